package report

import (
	"slices"

	"tankreport/internal/dataset"
)

// DistrictFunctionalityRow is one district with its tank functionality shares
type DistrictFunctionalityRow struct {
	Rank           int    `json:"rank"`
	District       string `json:"district"`
	Population     Number `json:"population"`
	Functioning    Number `json:"functioning"`
	Damaged        Number `json:"damaged"`
	NonFunctioning Number `json:"non_functioning"`
}

// DistrictFunctionality lists districts by ascending share of functioning
// tanks, numbered from 1. Ties keep file order.
func DistrictFunctionality(w *dataset.Working) []DistrictFunctionalityRow {
	districts := slices.Clone(w.Districts)
	slices.SortStableFunc(districts, func(a, b dataset.District) int {
		return compareNaNLast(a.PctFunctioning, b.PctFunctioning)
	})

	rows := make([]DistrictFunctionalityRow, 0, len(districts))
	for i, d := range districts {
		rows = append(rows, DistrictFunctionalityRow{
			Rank:           i + 1,
			District:       d.Name,
			Population:     Number(d.Population),
			Functioning:    Number(d.PctFunctioning),
			Damaged:        Number(d.PctDamaged),
			NonFunctioning: Number(d.PctNonFunctioning),
		})
	}
	return rows
}

// DistrictAccessRow is one district with population access shares
type DistrictAccessRow struct {
	District      string `json:"district"`
	Population    Number `json:"population"`
	Functioning   Number `json:"functioning"`
	Damaged       Number `json:"damaged"`
	WithoutAccess Number `json:"without_access"`
}

// DistrictAccess lists districts by ascending share of population with
// access to a functioning tank. Ties keep file order.
func DistrictAccess(w *dataset.Working) []DistrictAccessRow {
	districts := slices.Clone(w.Districts)
	slices.SortStableFunc(districts, func(a, b dataset.District) int {
		return compareNaNLast(a.PopFunctioning, b.PopFunctioning)
	})

	rows := make([]DistrictAccessRow, 0, len(districts))
	for _, d := range districts {
		rows = append(rows, DistrictAccessRow{
			District:      d.Name,
			Population:    Number(d.Population),
			Functioning:   Number(d.PopFunctioning),
			Damaged:       Number(d.PopDamaged),
			WithoutAccess: Number(d.PopNonFunctioning),
		})
	}
	return rows
}

// PovertyRow joins a district access row with its poverty record
type PovertyRow struct {
	DistrictAccessRow
	DistrictName    string `json:"districtname"`
	PovertyRate2002 Number `json:"poverty_rate_2002"`
	PovertyRate2012 Number `json:"poverty_rate_2012"`
	PctHHAgri       Number `json:"pct_hh_agriculture"`
	PctPopAgri      Number `json:"pct_population_agriculture"`
}

// PovertyCorrelation is the district access table joined with poverty, and
// the two scatter relationships drawn from it
type PovertyCorrelation struct {
	Rows        []PovertyRow `json:"rows"`
	Agriculture Scatter      `json:"agriculture"`
	Poverty     Scatter      `json:"poverty"`
}

// Axis labels of the district scatters
const (
	LabelAccessFunctioning = "Population with access to functioning tank (%)"
	LabelPopAgri           = "HIES population with agriculture occupation 2016 (%)"
	LabelPovertyRate2012   = "HIES poverty head count 2012 (%)"
)

// Poverty inner-joins the access table with the poverty records on the
// district key. Districts missing on either side are dropped.
func Poverty(w *dataset.Working) PovertyCorrelation {
	return JoinPoverty(DistrictAccess(w), w.Poverty)
}

// JoinPoverty joins access rows with poverty records, keeping access order
func JoinPoverty(access []DistrictAccessRow, poverty []dataset.Poverty) PovertyCorrelation {
	byDistrict := make(map[string][]dataset.Poverty, len(poverty))
	for _, p := range poverty {
		byDistrict[p.District] = append(byDistrict[p.District], p)
	}

	pc := PovertyCorrelation{Rows: []PovertyRow{}}
	for _, a := range access {
		for _, p := range byDistrict[a.District] {
			pc.Rows = append(pc.Rows, PovertyRow{
				DistrictAccessRow: a,
				DistrictName:      p.DistrictName,
				PovertyRate2002:   Number(p.PovertyRate2002),
				PovertyRate2012:   Number(p.PovertyRate2012),
				PctHHAgri:         Number(p.PctHHAgri),
				PctPopAgri:        Number(p.PctPopAgri),
			})
		}
	}

	agri := make([]Point, 0, len(pc.Rows))
	pov := make([]Point, 0, len(pc.Rows))
	for _, r := range pc.Rows {
		agri = append(agri, Point{Label: r.District, X: r.Functioning, Y: r.PctPopAgri, Size: r.Population})
		pov = append(pov, Point{Label: r.District, X: r.Functioning, Y: r.PovertyRate2012, Size: r.Population})
	}
	pc.Agriculture = newScatter("Agriculture Occupation (%)", LabelAccessFunctioning, LabelPopAgri, agri)
	pc.Poverty = newScatter("Poverty (%)", LabelAccessFunctioning, LabelPovertyRate2012, pov)

	return pc
}

func compareNaNLast(a, b float64) int {
	switch {
	case lessNaNLast(a, b):
		return -1
	case lessNaNLast(b, a):
		return 1
	}
	return 0
}
