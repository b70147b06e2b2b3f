package report

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownChart is returned for a chart name the report does not draw
var ErrUnknownChart = errors.New("unknown chart")

// ChartKind selects how a chart is drawn
type ChartKind string

const (
	KindBar        ChartKind = "bar"
	KindGroupedBar ChartKind = "grouped_bar"
	KindScatter    ChartKind = "scatter"
)

// Chart names
const (
	ChartOwnership             = "ownership"
	ChartFunctionality         = "functionality"
	ChartEstablishing          = "establishing"
	ChartEstablishingPercent   = "establishing_functionality"
	ChartRenovation            = "renovation"
	ChartRenovationPercent     = "renovation_functionality"
	ChartUtilization           = "utilization"
	ChartUtilizationChoices    = "utilization_choices"
	ChartDistrictFunctionality = "district_functionality"
	ChartDistrictAccess        = "district_access"
	ChartPovertyAgriculture    = "poverty_agriculture"
	ChartPovertyRate           = "poverty_rate"
	ChartDSDAccess             = "dsd_access"
	ChartDSDPoverty            = "dsd_poverty"
)

// Charts lists every chart name
var Charts = []string{
	ChartOwnership,
	ChartFunctionality,
	ChartEstablishing,
	ChartEstablishingPercent,
	ChartRenovation,
	ChartRenovationPercent,
	ChartUtilization,
	ChartUtilizationChoices,
	ChartDistrictFunctionality,
	ChartDistrictAccess,
	ChartPovertyAgriculture,
	ChartPovertyRate,
	ChartDSDAccess,
	ChartDSDPoverty,
}

// Bar is one labelled value
type Bar struct {
	Label string `json:"label"`
	Value Number `json:"value"`
}

// BarSeries is one colour of a grouped bar chart; Values follow Chart.Groups
type BarSeries struct {
	Name   string   `json:"name"`
	Values []Number `json:"values"`
}

// Chart is a chart-ready series. Bars is set for KindBar, Groups and
// Series for KindGroupedBar, Scatter for KindScatter.
type Chart struct {
	Name    string      `json:"name"`
	Kind    ChartKind   `json:"kind"`
	Title   string      `json:"title"`
	XLabel  string      `json:"x_label"`
	YLabel  string      `json:"y_label"`
	Bars    []Bar       `json:"bars,omitempty"`
	Groups  []string    `json:"groups,omitempty"`
	Series  []BarSeries `json:"series,omitempty"`
	Scatter *Scatter    `json:"scatter,omitempty"`
}

// Chart returns the series of one named chart. The DSD access chart is
// drawn over the unfiltered mask table; SelectDSD pairs a filtered table
// with its own chart.
func (r *Report) Chart(name string) (Chart, error) {
	switch name {
	case ChartOwnership:
		return countChart(name, "Tank Ownership", "Ownership", r.OwnershipShare), nil
	case ChartFunctionality:
		return countChart(name, "Tank Functionality", "Functionality", r.Functionality), nil
	case ChartEstablishing:
		c := Chart{Name: name, Kind: KindBar, Title: "Number of Tanks by Establishing Year",
			XLabel: DimensionEstablishing, YLabel: "Number of tanks"}
		for _, g := range r.Establishing.Groups {
			c.Bars = append(c.Bars, Bar{Label: g.Label, Value: Number(g.Count)})
		}
		return c, nil
	case ChartEstablishingPercent:
		return crossChart(name, "Percent of Tanks by Establishing Year and Functionality", "Percent of tanks (%)", r.Establishing, true), nil
	case ChartRenovation:
		return crossChart(name, "Number of Tanks by Functionality, Renovation", "Number of tanks", r.Renovation, false), nil
	case ChartRenovationPercent:
		return crossChart(name, "Percent of Tank by Functionality, Renovation", "Percent of tanks (%)", r.Renovation, true), nil
	case ChartUtilization:
		c := Chart{Name: name, Kind: KindBar, Title: "Percent of Tanks by Utilization (multiple choices)",
			YLabel: "Percent of tanks (%)"}
		for _, u := range r.Utilization {
			c.Bars = append(c.Bars, Bar{Label: u.Purpose, Value: u.Percent})
		}
		return c, nil
	case ChartUtilizationChoices:
		return countChart(name, "Tank Utilization (top choices)", "Top choice", r.UtilizationChoices), nil
	case ChartDistrictFunctionality:
		c := Chart{Name: name, Kind: KindBar, Title: "Percent of Functioning Tanks in District (%)",
			XLabel: "District", YLabel: "Percent of tanks (%)"}
		for _, d := range r.DistrictFunctionality {
			c.Bars = append(c.Bars, Bar{Label: d.District, Value: d.Functioning})
		}
		return c, nil
	case ChartDistrictAccess:
		c := Chart{Name: name, Kind: KindBar, Title: "Population with Access to Functioning Tank in District (%)",
			XLabel: "District", YLabel: "Population access (%)"}
		for _, d := range r.DistrictAccess {
			c.Bars = append(c.Bars, Bar{Label: d.District, Value: d.Functioning})
		}
		return c, nil
	case ChartPovertyAgriculture:
		return scatterChart(name, r.PovertyCorrelation.Agriculture), nil
	case ChartPovertyRate:
		return scatterChart(name, r.PovertyCorrelation.Poverty), nil
	case ChartDSDAccess:
		return MaskChart(r.DSDMask), nil
	case ChartDSDPoverty:
		return scatterChart(name, r.DSDScatter), nil
	}
	return Chart{}, fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// MaskChart draws functioning access per DSD of a (filtered) mask table
func MaskChart(t MaskTable) Chart {
	c := Chart{Name: ChartDSDAccess, Kind: KindBar, Title: "Population Access to Functioning Tank (%)",
		XLabel: "DSD", YLabel: LabelDSDAccess}
	for _, row := range t.Rows {
		c.Bars = append(c.Bars, Bar{Label: row.DSD, Value: row.AccessFunctioning})
	}
	return c
}

// DSDSelection is a filtered mask table together with the access chart
// drawn from the same rows
type DSDSelection struct {
	MaskTable
	Chart Chart `json:"chart"`
}

// SelectDSD builds the selection view of a filtered mask table
func SelectDSD(t MaskTable) DSDSelection {
	return DSDSelection{MaskTable: t, Chart: MaskChart(t)}
}

func countChart(name, title, xLabel string, counts []CategoryCount) Chart {
	c := Chart{Name: name, Kind: KindBar, Title: title, XLabel: xLabel, YLabel: "Number of tanks"}
	for _, cc := range counts {
		c.Bars = append(c.Bars, Bar{Label: cc.Label, Value: Number(cc.Count)})
	}
	return c
}

// crossChart groups bars by dimension with one series per status
func crossChart(name, title, yLabel string, ct CrossTab, percent bool) Chart {
	c := Chart{Name: name, Kind: KindGroupedBar, Title: title, XLabel: ct.Dimension, YLabel: yLabel}

	var statuses []string
	for _, g := range ct.Groups {
		c.Groups = append(c.Groups, g.Label)
	}
	for _, cell := range ct.Cells {
		if !slices.Contains(statuses, cell.Status) {
			statuses = append(statuses, cell.Status)
		}
	}
	sortKeys(statuses)

	index := make(map[[2]string]CrossCell, len(ct.Cells))
	for _, cell := range ct.Cells {
		index[[2]string{cell.Group, cell.Status}] = cell
	}

	for _, s := range statuses {
		series := BarSeries{Name: s, Values: make([]Number, len(c.Groups))}
		for i, g := range c.Groups {
			cell, ok := index[[2]string{g, s}]
			switch {
			case !ok:
				series.Values[i] = NaN()
			case percent:
				series.Values[i] = cell.Percent
			default:
				series.Values[i] = Number(cell.Count)
			}
		}
		c.Series = append(c.Series, series)
	}
	return c
}

func scatterChart(name string, s Scatter) Chart {
	return Chart{Name: name, Kind: KindScatter, Title: s.Title, XLabel: s.XLabel, YLabel: s.YLabel, Scatter: &s}
}
