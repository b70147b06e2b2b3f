package report

import (
	"fmt"
	"strconv"
)

// Frame is a display-ready view of one derived table. Cells hold a
// string, an int or a Number.
type Frame struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len is the number of rows
func (f Frame) Len() int {
	return len(f.Rows)
}

// Strings renders every cell as text; undefined numbers become "n/a"
func (f Frame) Strings() [][]string {
	out := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = FormatCell(cell)
		}
	}
	return out
}

// FormatCell renders one frame cell as text
func FormatCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Frames lists the tabular sections in report order
func (r *Report) Frames() []Frame {
	return []Frame{
		OwnershipFrame(r.Ownership),
		CountFrame(SectionFunctionality, "Tank Functionality", "Functionality", r.Functionality),
		GroupFrame(SectionEstablishing+"_counts", "Number of Tanks by Establishing Year", r.Establishing),
		CrossFrame(SectionEstablishing, "Tanks by Establishing Year and Functionality", r.Establishing),
		CrossFrame(SectionRenovation, "Tanks by Functionality, Renovation", r.Renovation),
		UtilizationFrame(r.Utilization),
		CombinationFrame(r.TopCombinations),
		CountFrame(SectionUtilizationChoices, "Tank Utilization (top choices)", "Top choice", r.UtilizationChoices),
		DistrictFunctionalityFrame(r.DistrictFunctionality),
		DistrictAccessFrame(r.DistrictAccess),
		PovertyFrame(r.PovertyCorrelation),
		MaskFrame(r.DSDMask),
	}
}

// Frame returns the table view with the given name
func (r *Report) Frame(section string) (Frame, error) {
	for _, f := range r.Frames() {
		if f.Name == section {
			return f, nil
		}
	}
	return Frame{}, fmt.Errorf("%w: %q has no table view", ErrUnknownSection, section)
}

// OwnershipFrame renders the collection table with its Total row last
func OwnershipFrame(s OwnershipSummary) Frame {
	f := Frame{
		Name:    SectionOwnership,
		Title:   "Number of Tanks Mapped and Surveyed",
		Columns: []string{"Ownership", "N. tanks mapped", "N. tanks in data collection", "collection rate (%)"},
	}
	for _, r := range s.Rows {
		f.Rows = append(f.Rows, []any{r.Ownership, r.Mapped, r.Surveyed, r.CollectionRate})
	}
	t := s.Total
	f.Rows = append(f.Rows, []any{t.Ownership, t.Mapped, t.Surveyed, t.CollectionRate})
	return f
}

// CountFrame renders a category count series
func CountFrame(name, title, label string, counts []CategoryCount) Frame {
	f := Frame{Name: name, Title: title, Columns: []string{label, "Number of tanks"}}
	for _, c := range counts {
		f.Rows = append(f.Rows, []any{c.Label, c.Count})
	}
	return f
}

// GroupFrame renders the group totals of a cross-tabulation
func GroupFrame(name, title string, ct CrossTab) Frame {
	f := Frame{Name: name, Title: title, Columns: []string{ct.Dimension, "Number of tanks"}}
	for _, g := range ct.Groups {
		f.Rows = append(f.Rows, []any{g.Label, g.Count})
	}
	return f
}

// CrossFrame renders the cells of a cross-tabulation
func CrossFrame(name, title string, ct CrossTab) Frame {
	f := Frame{
		Name:    name,
		Title:   title,
		Columns: []string{ct.Dimension, "Functionality", "Number of tanks", "Percent of tanks (%)"},
	}
	for _, c := range ct.Cells {
		f.Rows = append(f.Rows, []any{c.Group, c.Status, c.Count, c.Percent})
	}
	return f
}

// UtilizationFrame renders the purpose shares
func UtilizationFrame(shares []UtilizationShare) Frame {
	f := Frame{
		Name:    SectionUtilization,
		Title:   "Percent of Tanks by Utilization (multiple choices)",
		Columns: []string{"Utilization", "Percent of tanks (%)"},
	}
	for _, s := range shares {
		f.Rows = append(f.Rows, []any{s.Purpose, s.Percent})
	}
	return f
}

// CombinationFrame renders the top combinations reference table
func CombinationFrame(combos []Combination) Frame {
	f := Frame{
		Name:    SectionTopCombinations,
		Title:   "Tank Utilization (Top choices)",
		Columns: []string{"Utilization", "N. tanks", "Pct. tanks (%)"},
	}
	for _, c := range combos {
		f.Rows = append(f.Rows, []any{c.Combination, c.Tanks, c.Percent})
	}
	return f
}

// DistrictFunctionalityFrame renders the numbered district table
func DistrictFunctionalityFrame(rows []DistrictFunctionalityRow) Frame {
	f := Frame{
		Name:    SectionDistrictFunctionality,
		Title:   "Percent of tanks in district with the following status of tank functionality (%)",
		Columns: []string{"#", "District", "Population", "Pct. tanks functioning", "Pct. tanks damaged", "Pct. tanks non-functioning"},
	}
	for _, r := range rows {
		f.Rows = append(f.Rows, []any{r.Rank, r.District, r.Population, r.Functioning, r.Damaged, r.NonFunctioning})
	}
	return f
}

// DistrictAccessFrame renders the population access table
func DistrictAccessFrame(rows []DistrictAccessRow) Frame {
	f := Frame{
		Name:    SectionDistrictAccess,
		Title:   "Population access to functioning tank in district (%)",
		Columns: []string{"District", "Population", "Access to functioning tank", "Access to damaged tank", "Without access"},
	}
	for _, r := range rows {
		f.Rows = append(f.Rows, []any{r.District, r.Population, r.Functioning, r.Damaged, r.WithoutAccess})
	}
	return f
}

// PovertyFrame renders the joined district poverty table
func PovertyFrame(pc PovertyCorrelation) Frame {
	f := Frame{
		Name:  SectionPovertyCorrelation,
		Title: "Tank Access, Agriculture Engagement and Poverty",
		Columns: []string{"District", "Population", "Access to functioning tank", "Poverty rate 2002",
			"Poverty rate 2012", "Pct. HH in agriculture occupation", "Pct. Population in agriculture occupation"},
	}
	for _, r := range pc.Rows {
		f.Rows = append(f.Rows, []any{r.District, r.Population, r.Functioning, r.PovertyRate2002,
			r.PovertyRate2012, r.PctHHAgri, r.PctPopAgri})
	}
	return f
}

// MaskFrame renders a (possibly filtered) DSD mask table
func MaskFrame(t MaskTable) Frame {
	f := Frame{
		Name:  SectionDSDMask,
		Title: "Access to Tank and Poverty Rate at DSD level",
		Columns: []string{"District", "DSD", "Access to functioning tank (%)", "Access to damaged tank (%)",
			"With no access to functioning tank (%)", "Estimated poverty headcount index (%)"},
	}
	for _, r := range t.Rows {
		f.Rows = append(f.Rows, []any{r.District, r.DSD, r.AccessFunctioning, r.AccessDamaged, r.NoAccess, r.PovertyHeadcount})
	}
	return f
}
