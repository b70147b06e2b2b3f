// Package report derives the summary tables and chart series of the small
// tanks report from the working tables of one pass.
//
// Every derivation is a pure function of a *dataset.Working. Build runs all
// of them and returns a fresh *Report; nothing is cached between passes.
//
// Grouping drops rows with an empty key and counts rows with a map_id.
// Percentages divide by the total of the same group and round half away
// from zero (1 place for cross-tabulations and the collection rate, 2 for
// utilization and the DSD mask). A zero denominator yields an undefined
// Number, which serialises as null.
//
// The only interactive step, the district filter over the DSD mask table,
// is FilterMaskTable. It re-slices the table and never recomputes it.
package report
