package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Tank file columns
const (
	ColMapID         = "map_id"
	ColOwnership     = "tankownership_map"
	ColFunctionality = "functionality"
	ColEstYear       = "est_year"
	ColRenovated     = "_3tankrehabilitatedrenovat"
	ColTankUtili     = "tank_utili"
	ColMergeSurvey   = "merge_survey"
)

// UtilizationColumns are the seven boolean purpose flags, in report order
var UtilizationColumns = [7]string{
	"_4_1irrigatedagriculture",
	"_4_2fishing",
	"_4_3livestock",
	"_4_4daytodayuse",
	"_4_5smallscaleindustries",
	"_4_6environmentaluse",
	"_4_7ecotourism",
}

// District file columns
const (
	ColDistrictName   = "districtname"
	ColDistPop        = "dist_pop"
	ColDistFunc       = "dist_func"
	ColDistDamaged    = "dist_damaged"
	ColDistNonFunc    = "dist_nonfunc"
	ColDistPopFunc    = "dist_pop_func"
	ColDistPopDamaged = "dist_pop_damaged"
	ColDistPopNonFunc = "dist_pop_nonfunc"
)

// DSD file columns
const (
	ColDSDName       = "adm3_en"
	ColDSDDistrict   = "adm2_en"
	ColASCPopFunc    = "asc_pop_func"
	ColASCPopDamaged = "asc_pop_damaged"
	ColASCPopNonFunc = "asc_pop_nonfunc"
)

// DSD poverty file columns
const (
	ColPovDistrict  = "ADM2_EN"
	ColPovDSD       = "ADM3_EN"
	ColPovHeadcount = "Estimated headcount index (%)"
)

// PovertyColumns are the canonical names given positionally to the first six
// columns of the district poverty file
var PovertyColumns = [6]string{
	"districtname",
	"Poverty rate 2002",
	"Poverty rate 2012",
	"District",
	"Pct. HH in agriculture occupation",
	"Pct. Population in agriculture occupation",
}

// Filter values
const (
	// MergeUsingOnly marks tank rows present only in the survey file
	MergeUsingOnly = "Using only (2)"
	// MergeMatched marks mapped tanks that also have a survey record
	MergeMatched = "Matched (3)"
)

// ExcludedDistricts are left out of the DSD table; the tank survey did not
// cover them
var ExcludedDistricts = []string{"Nuwara Eliya", "Ratnapura", "Jaffna"}

// Tank is one mapped tank
type Tank struct {
	MapID         string
	Ownership     string
	Functionality string
	// EstYear is the establishing-year bucket code, "" when missing.
	// Integral numbers are normalised, so "1.0" and "1" are both "1".
	EstYear string
	// Renovated is 0 or 1, NaN when missing
	Renovated   float64
	Utilization [7]float64
	TankUtili   string
	MergeSurvey string
}

// Counted reports whether the row contributes to map_id counts
func (t Tank) Counted() bool {
	return t.MapID != ""
}

// Surveyed reports whether the tank has a matched survey record
func (t Tank) Surveyed() bool {
	return t.MergeSurvey == MergeMatched
}

// District is one row of the district summary file
type District struct {
	Name              string
	Population        float64
	PctFunctioning    float64
	PctDamaged        float64
	PctNonFunctioning float64
	PopFunctioning    float64
	PopDamaged        float64
	PopNonFunctioning float64
}

// DSD is one divisional secretariat row with population access shares
type DSD struct {
	Name              string
	District          string
	PopFunctioning    float64
	PopDamaged        float64
	PopNonFunctioning float64
}

// Poverty is one row of the district poverty file after positional renaming
type Poverty struct {
	DistrictName    string
	PovertyRate2002 float64
	PovertyRate2012 float64
	District        string
	PctHHAgri       float64
	PctPopAgri      float64
}

// DSDPoverty is one row of the DSD poverty file
type DSDPoverty struct {
	District       string
	DSD            string
	HeadcountIndex float64
}

func parseTanks(t *table) ([]Tank, error) {
	cols := []string{ColMapID, ColOwnership, ColFunctionality, ColEstYear, ColRenovated, ColTankUtili, ColMergeSurvey}
	cols = append(cols, UtilizationColumns[:]...)
	if err := t.require(cols...); err != nil {
		return nil, err
	}

	tanks := make([]Tank, 0, len(t.rows))
	for i := range t.rows {
		tank := Tank{
			MapID:         t.text(i, ColMapID),
			Ownership:     t.text(i, ColOwnership),
			Functionality: t.text(i, ColFunctionality),
			EstYear:       normaliseCode(t.text(i, ColEstYear)),
			TankUtili:     t.text(i, ColTankUtili),
			MergeSurvey:   t.text(i, ColMergeSurvey),
		}

		var err error
		if tank.Renovated, err = t.number(i, ColRenovated); err != nil {
			return nil, err
		}
		for j, col := range UtilizationColumns {
			if tank.Utilization[j], err = t.number(i, col); err != nil {
				return nil, err
			}
		}

		tanks = append(tanks, tank)
	}
	return tanks, nil
}

func parseDistricts(t *table) ([]District, error) {
	if err := t.require(ColDistrictName, ColDistPop, ColDistFunc, ColDistDamaged, ColDistNonFunc,
		ColDistPopFunc, ColDistPopDamaged, ColDistPopNonFunc); err != nil {
		return nil, err
	}

	districts := make([]District, 0, len(t.rows))
	for i := range t.rows {
		d := District{Name: t.text(i, ColDistrictName)}
		fields := []struct {
			col string
			dst *float64
		}{
			{ColDistPop, &d.Population},
			{ColDistFunc, &d.PctFunctioning},
			{ColDistDamaged, &d.PctDamaged},
			{ColDistNonFunc, &d.PctNonFunctioning},
			{ColDistPopFunc, &d.PopFunctioning},
			{ColDistPopDamaged, &d.PopDamaged},
			{ColDistPopNonFunc, &d.PopNonFunctioning},
		}
		for _, f := range fields {
			v, err := t.number(i, f.col)
			if err != nil {
				return nil, err
			}
			*f.dst = v
		}
		districts = append(districts, d)
	}
	return districts, nil
}

func parseDSDs(t *table) ([]DSD, error) {
	if err := t.require(ColDSDName, ColDSDDistrict, ColASCPopFunc, ColASCPopDamaged, ColASCPopNonFunc); err != nil {
		return nil, err
	}

	dsds := make([]DSD, 0, len(t.rows))
	for i := range t.rows {
		d := DSD{
			Name:     t.text(i, ColDSDName),
			District: t.text(i, ColDSDDistrict),
		}
		var err error
		if d.PopFunctioning, err = t.number(i, ColASCPopFunc); err != nil {
			return nil, err
		}
		if d.PopDamaged, err = t.number(i, ColASCPopDamaged); err != nil {
			return nil, err
		}
		if d.PopNonFunctioning, err = t.number(i, ColASCPopNonFunc); err != nil {
			return nil, err
		}
		dsds = append(dsds, d)
	}
	return dsds, nil
}

// parsePoverty renames the six columns positionally; their original header
// text is ignored. Any other width is a load error.
func parsePoverty(t *table) ([]Poverty, error) {
	if err := t.requireWidth(len(PovertyColumns)); err != nil {
		return nil, err
	}

	rows := make([]Poverty, 0, len(t.rows))
	for i, row := range t.rows {
		p := Poverty{
			DistrictName: cleanText(row[0]),
			District:     cleanText(row[3]),
		}
		var err error
		if p.PovertyRate2002, err = t.numberAt(i, 1); err != nil {
			return nil, err
		}
		if p.PovertyRate2012, err = t.numberAt(i, 2); err != nil {
			return nil, err
		}
		if p.PctHHAgri, err = t.numberAt(i, 4); err != nil {
			return nil, err
		}
		if p.PctPopAgri, err = t.numberAt(i, 5); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

func parseDSDPoverty(t *table) ([]DSDPoverty, error) {
	if err := t.require(ColPovDistrict, ColPovDSD, ColPovHeadcount); err != nil {
		return nil, err
	}

	rows := make([]DSDPoverty, 0, len(t.rows))
	for i := range t.rows {
		p := DSDPoverty{
			District: t.text(i, ColPovDistrict),
			DSD:      t.text(i, ColPovDSD),
		}
		var err error
		if p.HeadcountIndex, err = t.number(i, ColPovHeadcount); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// normaliseCode turns integral numeric codes into their integer text form
func normaliseCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || v != math.Trunc(v) {
		return s
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
