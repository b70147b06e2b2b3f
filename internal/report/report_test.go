package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankreport/internal/dataset"
)

func tank(id int, ownership, functionality, year string, surveyed bool) dataset.Tank {
	t := dataset.Tank{
		MapID:         fmt.Sprintf("T%03d", id),
		Ownership:     ownership,
		Functionality: functionality,
		EstYear:       year,
		Renovated:     math.NaN(),
		MergeSurvey:   dataset.MergeUsingOnly,
	}
	if surveyed {
		t.MergeSurvey = dataset.MergeMatched
	}
	for i := range t.Utilization {
		t.Utilization[i] = math.NaN()
	}
	return t
}

// ownershipFixture has 7 Dept tanks (5 surveyed) and 3 Forest tanks (2 surveyed)
func ownershipFixture() *dataset.Working {
	w := &dataset.Working{}
	for i := 0; i < 7; i++ {
		w.Tanks = append(w.Tanks, tank(i, "Dept", "Functioning", "1", i < 5))
	}
	for i := 7; i < 10; i++ {
		w.Tanks = append(w.Tanks, tank(i, "Forest", "Damaged", "2", i < 9))
	}
	return w
}

func TestOwnership(t *testing.T) {
	s := Ownership(ownershipFixture())

	require.Len(t, s.Rows, 2)
	assert.Equal(t, OwnershipRow{Ownership: "Dept", Mapped: 7, Surveyed: 5, CollectionRate: 71.4}, s.Rows[0])
	assert.Equal(t, OwnershipRow{Ownership: "Forest", Mapped: 3, Surveyed: 2, CollectionRate: 66.7}, s.Rows[1])
	assert.Equal(t, OwnershipRow{Ownership: TotalLabel, Mapped: 10, Surveyed: 7, CollectionRate: 70.0}, s.Total)

	f := OwnershipFrame(s)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, TotalLabel, f.Rows[2][0])
	assert.Len(t, s.Rows, 2, "frame must not append to the summary rows")
}

func TestOwnershipDropsCategoryWithoutSurvey(t *testing.T) {
	w := ownershipFixture()
	w.Tanks = append(w.Tanks, tank(20, "Private", "Functioning", "1", false))

	s := Ownership(w)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, 10, s.Total.Mapped)

	counts := OwnershipCounts(w)
	assert.Equal(t, []CategoryCount{{"Dept", 7}, {"Forest", 3}, {"Private", 1}}, counts)
}

func TestIntroduction(t *testing.T) {
	h := Introduction(ownershipFixture())

	assert.Equal(t, 10, h.TanksMapped)
	assert.Equal(t, 7, h.TanksSurveyed)
	assert.Equal(t, Number(70.0), h.CollectionRate)
	require.Len(t, h.Ownership, 2)
	assert.Equal(t, Number(70.0), h.Ownership[0].Percent)
	assert.Equal(t, Number(30.0), h.Ownership[1].Percent)
}

func TestEstablishingBucketPercentages(t *testing.T) {
	w := &dataset.Working{}
	for i := 0; i < 100; i++ {
		status := "Functioning"
		if i >= 60 {
			status = "Non-functioning"
		}
		w.Tanks = append(w.Tanks, tank(i, "Dept", status, "1", true))
	}

	ct := Establishing(w)
	require.Len(t, ct.Groups, 1)
	assert.Equal(t, GroupTotal{Code: "1", Label: "Before 1970", Count: 100}, ct.Groups[0])
	assert.Equal(t, []CrossCell{
		{Group: "Before 1970", Status: "Functioning", Count: 60, Percent: 60.0},
		{Group: "Before 1970", Status: "Non-functioning", Count: 40, Percent: 40.0},
	}, ct.Cells)
}

func TestCrossTabPercentagesSumToHundred(t *testing.T) {
	w := &dataset.Working{}
	statuses := []string{"Functioning", "Damaged", "Non-functioning"}
	for i := 0; i < 37; i++ {
		year := fmt.Sprint(i%4 + 1)
		w.Tanks = append(w.Tanks, tank(i, "Dept", statuses[i%3], year, true))
	}

	ct := Establishing(w)
	sums := groupPercentSums(ct)
	require.Len(t, sums, 4)
	for group, sum := range sums {
		assertHundred(t, sum, group)
	}
}

// groupPercentSums adds the rounded cell percentages of each group in
// decimal so the sums carry no binary float error
func groupPercentSums(ct CrossTab) map[string]decimal.Decimal {
	sums := map[string]decimal.Decimal{}
	for _, c := range ct.Cells {
		sums[c.Group] = sums[c.Group].Add(decimal.NewFromFloat(c.Percent.Float()))
	}
	return sums
}

func assertHundred(t *testing.T, sum decimal.Decimal, group string) {
	t.Helper()
	diff := sum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.1")),
		"group %s sums to %s", group, sum)
}

func TestCrossTabCountsMissingFunctionalityInDenominator(t *testing.T) {
	w := &dataset.Working{Tanks: []dataset.Tank{
		tank(1, "Dept", "Functioning", "2", true),
		tank(2, "Dept", "", "2", true),
	}}

	ct := Establishing(w)
	require.Len(t, ct.Cells, 1)
	assert.Equal(t, 2, ct.Groups[0].Count)
	assert.Equal(t, Number(50.0), ct.Cells[0].Percent)
}

func TestCrossTabZeroCountGroupIsUndefined(t *testing.T) {
	uncounted := tank(1, "Dept", "Functioning", "3", true)
	uncounted.MapID = ""

	ct := Establishing(&dataset.Working{Tanks: []dataset.Tank{uncounted}})
	require.Len(t, ct.Cells, 1)
	assert.Equal(t, 0, ct.Groups[0].Count)
	assert.False(t, ct.Cells[0].Percent.Valid())
}

func TestRenovation(t *testing.T) {
	var tanks []dataset.Tank
	add := func(renovated float64, functionality string) {
		tk := tank(len(tanks)+1, "Dept", functionality, "1", true)
		tk.Renovated = renovated
		tanks = append(tanks, tk)
	}
	add(1, "Functioning")
	add(1, "Damaged")
	add(1, "Non-functioning")
	add(0, "Functioning")
	add(0, "Functioning")
	add(0, "Damaged")
	add(math.NaN(), "Damaged")

	ct := Renovation(&dataset.Working{Tanks: tanks})
	assert.Equal(t, DimensionRenovation, ct.Dimension)
	require.Len(t, ct.Groups, 2, "unknown renovation is left out")
	assert.Equal(t, GroupTotal{Code: "0.0", Label: "No", Count: 3}, ct.Groups[0])
	assert.Equal(t, GroupTotal{Code: "1.0", Label: "Yes", Count: 3}, ct.Groups[1])

	percents := map[[2]string]Number{}
	counts := map[[2]string]int{}
	for _, c := range ct.Cells {
		percents[[2]string{c.Group, c.Status}] = c.Percent
		counts[[2]string{c.Group, c.Status}] = c.Count
	}
	assert.Len(t, ct.Cells, 5)
	assert.Equal(t, Number(66.7), percents[[2]string{"No", "Functioning"}])
	assert.Equal(t, Number(33.3), percents[[2]string{"No", "Damaged"}])
	assert.Equal(t, 2, counts[[2]string{"No", "Functioning"}])
	for _, status := range []string{"Functioning", "Damaged", "Non-functioning"} {
		assert.Equal(t, Number(33.3), percents[[2]string{"Yes", status}], status)
		assert.Equal(t, 1, counts[[2]string{"Yes", status}], status)
	}

	sums := groupPercentSums(ct)
	require.Len(t, sums, 2)
	for group, sum := range sums {
		assertHundred(t, sum, group)
	}
}

func TestFlagCode(t *testing.T) {
	assert.Equal(t, "0.0", flagCode(0))
	assert.Equal(t, "1.0", flagCode(1))
	assert.Equal(t, "0.5", flagCode(0.5))
	assert.Equal(t, "", flagCode(math.NaN()))
}

func TestUtilization(t *testing.T) {
	a := tank(1, "Dept", "Functioning", "1", true)
	b := tank(2, "Dept", "Functioning", "1", true)
	c := tank(3, "Dept", "Functioning", "1", true)
	a.Utilization[0], b.Utilization[0], c.Utilization[0] = 1, 0, 1
	a.Utilization[1], b.Utilization[1] = 1, 0

	shares := Utilization(&dataset.Working{Tanks: []dataset.Tank{a, b, c}})
	require.Len(t, shares, len(dataset.UtilizationColumns))
	assert.Equal(t, "Irrigation", shares[0].Purpose)
	assert.Equal(t, Number(66.67), shares[0].Percent)
	assert.Equal(t, Number(50.0), shares[1].Percent)
	assert.False(t, shares[2].Percent.Valid(), "no answers is undefined")
	assert.Equal(t, "Samll scale industries", shares[4].Purpose)
}

func TestGroupKeyOrder(t *testing.T) {
	keys := []string{"10", "2", "1"}
	sortKeys(keys)
	assert.Equal(t, []string{"1", "2", "10"}, keys)

	keys = []string{"b", "10", "a"}
	sortKeys(keys)
	assert.Equal(t, []string{"10", "a", "b"}, keys)
}

func districtFixture() *dataset.Working {
	return &dataset.Working{
		Districts: []dataset.District{
			{Name: "A", Population: 100, PctFunctioning: 50, PopFunctioning: 40},
			{Name: "B", Population: 200, PctFunctioning: math.NaN(), PopFunctioning: 20},
			{Name: "D", Population: 300, PctFunctioning: 10, PopFunctioning: 40},
		},
		Poverty: []dataset.Poverty{
			{DistrictName: "a", District: "A", PovertyRate2012: 5, PctPopAgri: 30},
			{DistrictName: "b", District: "B", PovertyRate2012: 9, PctPopAgri: 50},
			{DistrictName: "c", District: "C", PovertyRate2012: 7, PctPopAgri: 40},
		},
	}
}

func TestDistrictFunctionalityOrder(t *testing.T) {
	rows := DistrictFunctionality(districtFixture())

	require.Len(t, rows, 3)
	assert.Equal(t, "D", rows[0].District)
	assert.Equal(t, "A", rows[1].District)
	assert.Equal(t, "B", rows[2].District, "undefined shares sort last")
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestDistrictAccessStableTies(t *testing.T) {
	rows := DistrictAccess(districtFixture())

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B", "A", "D"}, []string{rows[0].District, rows[1].District, rows[2].District})
}

func TestPovertyJoin(t *testing.T) {
	pc := Poverty(districtFixture())

	var got []string
	for _, r := range pc.Rows {
		got = append(got, r.District)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, got)
	assert.Len(t, pc.Agriculture.Points, 2)
	assert.Len(t, pc.Poverty.Points, 2)
	assert.Equal(t, LabelPovertyRate2012, pc.Poverty.YLabel)
}

func TestPovertyJoinDuplicateKeys(t *testing.T) {
	access := []DistrictAccessRow{{District: "A"}}
	poverty := []dataset.Poverty{{District: "A", DistrictName: "first"}, {District: "A", DistrictName: "second"}}

	pc := JoinPoverty(access, poverty)
	require.Len(t, pc.Rows, 2)
	assert.Equal(t, "first", pc.Rows[0].DistrictName)
	assert.Equal(t, "second", pc.Rows[1].DistrictName)
}

func maskFixture() MaskTable {
	return newMaskTable([]MaskRow{
		{District: "X", DSD: "x1"},
		{District: "Y", DSD: "y1"},
		{District: "X", DSD: "x2"},
		{District: "Z", DSD: "z1"},
		{District: "Y", DSD: "y2"},
	})
}

func TestFilterMaskTable(t *testing.T) {
	table := maskFixture()

	t.Run("single district", func(t *testing.T) {
		got := FilterMaskTable(table, []string{"X"})
		require.Equal(t, 2, got.Count)
		for _, r := range got.Rows {
			assert.Equal(t, "X", r.District)
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		got := FilterMaskTable(table, []string{})
		assert.Equal(t, 0, got.Count)
		assert.Empty(t, got.Rows)
		assert.NotNil(t, got.Rows)
	})

	t.Run("unknown district", func(t *testing.T) {
		got := FilterMaskTable(table, []string{"Q"})
		assert.Equal(t, 0, got.Count)
	})

	t.Run("source untouched", func(t *testing.T) {
		FilterMaskTable(table, []string{"Y"})
		assert.Equal(t, 5, table.Count)
	})
}

func TestSelectDSD(t *testing.T) {
	sel := SelectDSD(FilterMaskTable(maskFixture(), []string{"X"}))
	assert.Equal(t, 2, sel.Count)
	assert.Equal(t, ChartDSDAccess, sel.Chart.Name)
	require.Len(t, sel.Chart.Bars, 2)
	for i, b := range sel.Chart.Bars {
		assert.Equal(t, sel.Rows[i].DSD, b.Label)
	}

	raw, err := json.Marshal(sel)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "rows")
	assert.Contains(t, decoded, "count")
	assert.Contains(t, decoded, "chart")

	empty := SelectDSD(FilterMaskTable(maskFixture(), []string{}))
	assert.Empty(t, empty.Chart.Bars)
}

func TestDSDMask(t *testing.T) {
	w := &dataset.Working{
		DSDs: []dataset.DSD{
			{Name: "d1", District: "X", PopFunctioning: 12.345, PopDamaged: 1.005, PopNonFunctioning: 3},
			{Name: "d2", District: "Y", PopFunctioning: math.NaN()},
			{Name: "d3", District: "X", PopFunctioning: 20},
			{Name: "d4", District: "Z", PopFunctioning: 5},
		},
		DSDPoverty: []dataset.DSDPoverty{
			{DSD: "d1", District: "ignored", HeadcountIndex: 7.777},
			{DSD: "d2", HeadcountIndex: 3},
			{DSD: "d3", HeadcountIndex: 4},
		},
	}

	mask := DSDMask(w)
	require.Equal(t, 2, mask.Count)
	assert.Equal(t, MaskRow{
		District: "X", DSD: "d1",
		AccessFunctioning: 12.35, AccessDamaged: 1.01, NoAccess: 3, PovertyHeadcount: 7.78,
	}, mask.Rows[0])
	assert.Equal(t, "d3", mask.Rows[1].DSD)

	assert.Equal(t, []string{"X", "Y", "Z"}, DistrictOptions(w))
}

func TestReportFilterDSDDefaultsToAllDistricts(t *testing.T) {
	r := &Report{DSDMask: maskFixture(), Districts: []string{"X", "Y", "Z"}}

	assert.Equal(t, 5, r.FilterDSD(nil).Count)
	assert.Equal(t, 0, r.FilterDSD([]string{}).Count)
	assert.Equal(t, 2, r.FilterDSD([]string{"Y"}).Count)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{0.125, 2, 0.13},
		{71.42857, 1, 71.4},
		{66.666, 1, 66.7},
		{0.05, 1, 0.1},
		{-0.05, 1, -0.1},
		{2.5, 0, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, tt.places), "Round(%v, %d)", tt.in, tt.places)
	}
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.False(t, Percent(1, 0, 1).Valid())
}

func TestNumberJSON(t *testing.T) {
	b, err := json.Marshal([]Number{1.5, NaN(), 70})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, 70]`, string(b))

	var back []Number
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 3)
	assert.False(t, back[1].Valid())
	assert.Equal(t, "n/a", back[1].String())
	assert.Equal(t, "70", back[2].String())
}

func TestFitOLS(t *testing.T) {
	points := []Point{
		{X: 1, Y: 3},
		{X: 2, Y: 5},
		{X: 3, Y: 7},
		{X: NaN(), Y: 100},
	}
	trend := FitOLS(points)

	assert.Equal(t, 3, trend.N)
	assert.InDelta(t, 1, trend.Intercept.Float(), 1e-9)
	assert.InDelta(t, 2, trend.Slope.Float(), 1e-9)
	assert.InDelta(t, 1, trend.RSquared.Float(), 1e-9)
	assert.InDelta(t, 9, trend.At(4), 1e-9)

	flat := FitOLS([]Point{{X: 1, Y: 1}, {X: 1, Y: 2}})
	assert.False(t, flat.Slope.Valid())

	single := FitOLS([]Point{{X: 1, Y: 1}})
	assert.False(t, single.Intercept.Valid())
}

func TestBuildExcludesUnsurveyedFromDerivedTables(t *testing.T) {
	w := ownershipFixture()
	r := Build(w)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(b), dataset.MergeUsingOnly)
	assert.Len(t, r.TopCombinations, 6)
	assert.Len(t, r.Maps, len(mapAssets))
}

func TestSection(t *testing.T) {
	r := Build(ownershipFixture())

	for _, name := range Sections {
		_, err := r.Section(name)
		assert.NoError(t, err, name)
	}

	_, err := r.Section("nope")
	assert.True(t, errors.Is(err, ErrUnknownSection))

	f, err := r.Frame(SectionOwnership)
	require.NoError(t, err)
	assert.Equal(t, "Number of Tanks Mapped and Surveyed", f.Title)

	_, err = r.Frame(SectionMaps)
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestFrameStrings(t *testing.T) {
	f := Frame{Rows: [][]any{{"a", 3, Number(1.5), NaN(), nil}}}
	assert.Equal(t, [][]string{{"a", "3", "1.5", "n/a", ""}}, f.Strings())
}

func TestCharts(t *testing.T) {
	w := ownershipFixture()
	w.Districts = districtFixture().Districts
	w.Poverty = districtFixture().Poverty
	r := Build(w)

	for _, name := range Charts {
		c, err := r.Chart(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name)
	}

	_, err := r.Chart("pie")
	assert.ErrorIs(t, err, ErrUnknownChart)

	c, err := r.Chart(ChartEstablishingPercent)
	require.NoError(t, err)
	assert.Equal(t, KindGroupedBar, c.Kind)
	assert.Equal(t, []string{"Before 1970", "1971 - 1980"}, c.Groups)
	require.Len(t, c.Series, 2)
	assert.Equal(t, "Damaged", c.Series[0].Name)
	assert.False(t, c.Series[0].Values[0].Valid(), "no damaged tanks before 1970")
	assert.Equal(t, Number(100), c.Series[0].Values[1])

	c, err = r.Chart(ChartPovertyRate)
	require.NoError(t, err)
	require.NotNil(t, c.Scatter)
	assert.Len(t, c.Scatter.Points, 2)
}

func TestMapAssets(t *testing.T) {
	maps := Maps()
	require.NotEmpty(t, maps)
	for _, m := range maps {
		assert.Equal(t, MapsURLPrefix+m.File, m.URL)
		assert.True(t, IsMapAsset(m.File))
	}
	assert.False(t, IsMapAsset("../config.yaml"))
	assert.Empty(t, mapAssets[0].URL, "Maps must not mutate the asset list")
}
