package report

import (
	"math"
	"strconv"
	"strings"

	"tankreport/internal/dataset"
)

// YearLabels name the establishing-year bucket codes
var YearLabels = map[string]string{
	"1": "Before 1970",
	"2": "1971 - 1980",
	"3": "1981 - 1990",
	"4": "1991 - 2000",
	"5": "2001 - 2010",
	"6": "2011 - 2020",
}

// RenovationLabels name the renovation flag codes
var RenovationLabels = map[string]string{
	"0.0": "No",
	"1.0": "Yes",
}

// UtilizationLabels name the seven purpose flag columns
var UtilizationLabels = map[string]string{
	"_4_1irrigatedagriculture": "Irrigation",
	"_4_2fishing":              "Fishing",
	"_4_3livestock":            "Livestock",
	"_4_4daytodayuse":          "Day-to-day use",
	"_4_5smallscaleindustries": "Samll scale industries",
	"_4_6environmentaluse":     "Environment use",
	"_4_7ecotourism":           "Ecotourism",
}

// CategoryCount is one slice of a pie or bar series
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// OwnershipRow is one line of the data collection table
type OwnershipRow struct {
	Ownership      string `json:"ownership"`
	Mapped         int    `json:"mapped"`
	Surveyed       int    `json:"surveyed"`
	CollectionRate Number `json:"collection_rate"`
}

// OwnershipSummary compares mapped and surveyed tanks per ownership
// category. Total is appended once, after the category rates.
type OwnershipSummary struct {
	Rows  []OwnershipRow `json:"rows"`
	Total OwnershipRow   `json:"total"`
}

// TotalLabel names the appended sum row
const TotalLabel = "Total"

// Ownership joins mapped counts with surveyed counts per ownership category.
// Categories without any surveyed row are dropped by the inner join.
func Ownership(w *dataset.Working) OwnershipSummary {
	mapped := newCounter()
	surveyed := newCounter()
	for _, t := range w.Tanks {
		mapped.add(t.Ownership, t.Counted())
		if t.Surveyed() {
			surveyed.add(t.Ownership, t.Counted())
		}
	}

	summary := OwnershipSummary{Rows: []OwnershipRow{}}
	for _, key := range mapped.sorted() {
		s, ok := surveyed.get(key)
		if !ok {
			continue
		}
		m, _ := mapped.get(key)
		summary.Rows = append(summary.Rows, OwnershipRow{
			Ownership:      key,
			Mapped:         m,
			Surveyed:       s,
			CollectionRate: Percent(s, m, 1),
		})
	}

	total := OwnershipRow{Ownership: TotalLabel}
	for _, r := range summary.Rows {
		total.Mapped += r.Mapped
		total.Surveyed += r.Surveyed
	}
	total.CollectionRate = Percent(total.Surveyed, total.Mapped, 1)
	summary.Total = total

	return summary
}

// OwnershipCounts counts mapped tanks per ownership category over all tanks
func OwnershipCounts(w *dataset.Working) []CategoryCount {
	return countBy(w.Tanks, func(t dataset.Tank) string { return t.Ownership })
}

// Functionality counts tanks per functionality status
func Functionality(w *dataset.Working) []CategoryCount {
	return countBy(w.Tanks, func(t dataset.Tank) string { return t.Functionality })
}

// UtilizationChoices counts tanks per top utilization choice
func UtilizationChoices(w *dataset.Working) []CategoryCount {
	return countBy(w.Tanks, func(t dataset.Tank) string { return t.TankUtili })
}

func countBy(tanks []dataset.Tank, key func(dataset.Tank) string) []CategoryCount {
	c := newCounter()
	for _, t := range tanks {
		c.add(key(t), t.Counted())
	}

	out := []CategoryCount{}
	for _, k := range c.sorted() {
		n, _ := c.get(k)
		out = append(out, CategoryCount{Label: k, Count: n})
	}
	return out
}

// GroupTotal is the tank count of one group of a cross-tabulation
type GroupTotal struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CrossCell is the count and within-group percentage of one functionality
// status inside one group
type CrossCell struct {
	Group   string `json:"group"`
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Percent Number `json:"percent"`
}

// CrossTab cross-tabulates functionality against one grouping column.
// Percent divides by the group total, which also counts tanks whose
// functionality is missing.
type CrossTab struct {
	Dimension string       `json:"dimension"`
	Groups    []GroupTotal `json:"groups"`
	Cells     []CrossCell  `json:"cells"`
}

// Dimension names
const (
	DimensionEstablishing = "Establishing year"
	DimensionRenovation   = "Renovated in the last five year"
)

// Establishing cross-tabulates functionality by establishing-year bucket
func Establishing(w *dataset.Working) CrossTab {
	return crossTab(w.Tanks, DimensionEstablishing, YearLabels,
		func(t dataset.Tank) string { return t.EstYear })
}

// Renovation cross-tabulates functionality by the renovation flag
func Renovation(w *dataset.Working) CrossTab {
	return crossTab(w.Tanks, DimensionRenovation, RenovationLabels,
		func(t dataset.Tank) string { return flagCode(t.Renovated) })
}

func crossTab(tanks []dataset.Tank, dimension string, labels map[string]string, key func(dataset.Tank) string) CrossTab {
	groups := newCounter()
	cells := make(map[pair]int)
	statuses := make(map[string][]string)

	for _, t := range tanks {
		g := key(t)
		groups.add(g, t.Counted())
		if g == "" || t.Functionality == "" {
			continue
		}
		p := pair{group: g, category: t.Functionality}
		if _, ok := cells[p]; !ok {
			cells[p] = 0
			statuses[g] = append(statuses[g], t.Functionality)
		}
		if t.Counted() {
			cells[p]++
		}
	}

	ct := CrossTab{Dimension: dimension, Groups: []GroupTotal{}, Cells: []CrossCell{}}
	for _, g := range groups.sorted() {
		total, _ := groups.get(g)
		label := relabel(labels, g)
		ct.Groups = append(ct.Groups, GroupTotal{Code: g, Label: label, Count: total})

		sortKeys(statuses[g])
		for _, s := range statuses[g] {
			n := cells[pair{group: g, category: s}]
			ct.Cells = append(ct.Cells, CrossCell{
				Group:   label,
				Status:  s,
				Count:   n,
				Percent: Percent(n, total, 1),
			})
		}
	}
	return ct
}

// flagCode renders a numeric flag the way the source data spells it
// ("0.0", "1.0"); NaN is the empty key
func flagCode(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}

// UtilizationShare is the percentage of tanks with one purpose flag set
type UtilizationShare struct {
	Column  string `json:"column"`
	Purpose string `json:"purpose"`
	Percent Number `json:"percent"`
}

// Utilization averages each purpose flag over the tanks that answered it
func Utilization(w *dataset.Working) []UtilizationShare {
	out := make([]UtilizationShare, 0, len(dataset.UtilizationColumns))
	values := make([]float64, len(w.Tanks))
	for i, col := range dataset.UtilizationColumns {
		for j, t := range w.Tanks {
			values[j] = t.Utilization[i]
		}
		out = append(out, UtilizationShare{
			Column:  col,
			Purpose: relabel(UtilizationLabels, col),
			Percent: RoundN(mean(values)*100, 2),
		})
	}
	return out
}

// Combination is one row of the top utilization combinations table
type Combination struct {
	Combination string `json:"combination"`
	Tanks       int    `json:"tanks"`
	Percent     Number `json:"percent"`
}

// TopCombinations is reference data computed offline over the 14,515
// surveyed tanks. It is not derived from the loaded files.
func TopCombinations() []Combination {
	return []Combination{
		{Combination: "irrigation only", Tanks: 4690, Percent: 21.56},
		{Combination: "irrigation-daytoday", Tanks: 1724, Percent: 7.93},
		{Combination: "irrigation-livestock-daytoday", Tanks: 1329, Percent: 6.11},
		{Combination: "irrigation-fishing-livestock-daytoday", Tanks: 989, Percent: 4.55},
		{Combination: "irrigation-livestock", Tanks: 903, Percent: 4.15},
		{Combination: "irrigation-fishing-livestock", Tanks: 500, Percent: 2.3},
	}
}

// Highlights are the headline figures of the introduction
type Highlights struct {
	TanksMapped    int              `json:"tanks_mapped"`
	TanksSurveyed  int              `json:"tanks_surveyed"`
	CollectionRate Number           `json:"collection_rate"`
	Ownership      []OwnershipShare `json:"ownership"`
}

// OwnershipShare is the share of mapped tanks held by one ownership category
type OwnershipShare struct {
	Ownership string `json:"ownership"`
	Tanks     int    `json:"tanks"`
	Percent   Number `json:"percent"`
}

// Introduction computes the headline figures
func Introduction(w *dataset.Working) Highlights {
	h := Highlights{Ownership: []OwnershipShare{}}
	for _, t := range w.Tanks {
		if !t.Counted() {
			continue
		}
		h.TanksMapped++
		if t.Surveyed() {
			h.TanksSurveyed++
		}
	}
	h.CollectionRate = Percent(h.TanksSurveyed, h.TanksMapped, 1)

	shares := OwnershipCounts(w)
	total := 0
	for _, s := range shares {
		total += s.Count
	}
	for _, s := range shares {
		h.Ownership = append(h.Ownership, OwnershipShare{
			Ownership: s.Label,
			Tanks:     s.Count,
			Percent:   Percent(s.Count, total, 1),
		})
	}
	return h
}
