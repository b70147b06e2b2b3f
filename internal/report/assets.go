package report

import "slices"

// MapAsset is a pre-rendered map image shown next to a report section.
// Images are served as they are from the maps directory.
type MapAsset struct {
	File    string `json:"file"`
	Caption string `json:"caption"`
	Section string `json:"section"`
	URL     string `json:"url"`
}

// MapsURLPrefix is the HTTP path the maps directory is served under
const MapsURLPrefix = "/maps/"

var mapAssets = []MapAsset{
	{File: "tank_irrigation.jpg", Caption: "Irrigation Only", Section: "Tank spatial distribution by utilization"},
	{File: "tank_agri.jpg", Caption: "Agriculture (Irrigation/Fishing/Livestock)", Section: "Tank spatial distribution by utilization"},
	{File: "tank_agri_day.jpg", Caption: "Agriculture and Day-to-day", Section: "Tank spatial distribution by utilization"},
	{File: "dist_pop_agri.jpg", Caption: "Population with Occupation in Agriculture Industry (%, HIES 2016)", Section: "Tank Access, Agriculture Engagement and Poverty"},
	{File: "dist_pop_func.jpg", Caption: "Population with Access to Functioning Tank (%)", Section: "Tank Access, Agriculture Engagement and Poverty"},
	{File: "asc_pop_nofunc.jpg", Caption: "Population with access to non-functional tank (%)", Section: "DSD Bivariate Map"},
	{File: "asc_pop_dro.jpg", Caption: "Population living under severe drought (%, 2011-2020)", Section: "DSD Bivariate Map"},
	{File: "asc_nonfunc_dro_biv.jpg", Caption: "Access - Drought bivariate map", Section: "DSD Bivariate Map"},
}

// Maps lists the map images in report order
func Maps() []MapAsset {
	out := slices.Clone(mapAssets)
	for i := range out {
		out[i].URL = MapsURLPrefix + out[i].File
	}
	return out
}

// IsMapAsset reports whether name is one of the known map images
func IsMapAsset(name string) bool {
	return slices.ContainsFunc(mapAssets, func(m MapAsset) bool { return m.File == name })
}
