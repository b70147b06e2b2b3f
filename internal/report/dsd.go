package report

import (
	"math"

	"tankreport/internal/dataset"
)

// MaskRow is one DSD with access shares and its poverty headcount
type MaskRow struct {
	District          string `json:"district"`
	DSD               string `json:"dsd"`
	AccessFunctioning Number `json:"access_functioning"`
	AccessDamaged     Number `json:"access_damaged"`
	NoAccess          Number `json:"no_access"`
	PovertyHeadcount  Number `json:"poverty_headcount"`
}

// MaskTable is the DSD-level table behind the district filter. Count is
// always len(Rows).
type MaskTable struct {
	Rows  []MaskRow `json:"rows"`
	Count int       `json:"count"`
}

func newMaskTable(rows []MaskRow) MaskTable {
	if rows == nil {
		rows = []MaskRow{}
	}
	return MaskTable{Rows: rows, Count: len(rows)}
}

// DSDMask inner-joins the DSD table with the DSD poverty records on the DSD
// name, keeping the district of the DSD table. Rows without a functioning
// access value are dropped and every value is rounded to 2 places.
func DSDMask(w *dataset.Working) MaskTable {
	byDSD := make(map[string][]dataset.DSDPoverty, len(w.DSDPoverty))
	for _, p := range w.DSDPoverty {
		byDSD[p.DSD] = append(byDSD[p.DSD], p)
	}

	var rows []MaskRow
	for _, d := range w.DSDs {
		if math.IsNaN(d.PopFunctioning) {
			continue
		}
		for _, p := range byDSD[d.Name] {
			rows = append(rows, MaskRow{
				District:          d.District,
				DSD:               d.Name,
				AccessFunctioning: RoundN(d.PopFunctioning, 2),
				AccessDamaged:     RoundN(d.PopDamaged, 2),
				NoAccess:          RoundN(d.PopNonFunctioning, 2),
				PovertyHeadcount:  RoundN(p.HeadcountIndex, 2),
			})
		}
	}
	return newMaskTable(rows)
}

// FilterMaskTable keeps the rows whose district is selected. It only
// re-slices the table: an empty selection yields zero rows and Count 0.
func FilterMaskTable(table MaskTable, selected []string) MaskTable {
	keep := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		keep[s] = struct{}{}
	}

	rows := make([]MaskRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		if _, ok := keep[r.District]; ok {
			rows = append(rows, r)
		}
	}
	return newMaskTable(rows)
}

// DistrictOptions lists the districts of the DSD table in order of first
// appearance. They are the choices and the default selection of the filter.
func DistrictOptions(w *dataset.Working) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, d := range w.DSDs {
		if _, ok := seen[d.District]; ok {
			continue
		}
		seen[d.District] = struct{}{}
		out = append(out, d.District)
	}
	return out
}

// Axis labels of the DSD scatter
const (
	LabelDSDAccess  = "Access to functioning tank (%)"
	LabelDSDPoverty = "Estimated poverty headcount index (%)"
)

// DSDScatter relates DSD access to poverty over the unfiltered mask table
func DSDScatter(table MaskTable) Scatter {
	points := make([]Point, 0, len(table.Rows))
	for _, r := range table.Rows {
		points = append(points, Point{Label: r.DSD, X: r.AccessFunctioning, Y: r.PovertyHeadcount})
	}
	return newScatter("Access to Functioning Tank and Poverty Rate", LabelDSDAccess, LabelDSDPoverty, points)
}
