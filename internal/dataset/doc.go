// Package dataset reads the small-tank input files into the working tables
// of one report pass.
//
// Five UTF-8 CSV files are read: tank records, district records, DSD
// (divisional secretariat) records, district poverty and DSD poverty. Each
// file is parsed against the columns it must carry, the fixed exclusion
// filters are applied and the result is returned as an immutable *Working.
//
// Loading is all-or-nothing. A missing file, an unparseable file or a
// missing column aborts the whole load with a *LoadError.
//
// Numeric cells that are empty or hold a conventional missing token
// ("NaN", "nan", "NA", ...) load as math.NaN(); the report treats NaN as
// "no data".
package dataset
