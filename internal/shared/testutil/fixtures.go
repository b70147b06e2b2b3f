package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"tankreport/internal/config"
)

// TankHeader is the column row of the tank fixture
const TankHeader = "map_id,tankownership_map,functionality,est_year,_3tankrehabilitatedrenovat," +
	"_4_1irrigatedagriculture,_4_2fishing,_4_3livestock,_4_4daytodayuse,_4_5smallscaleindustries," +
	"_4_6environmentaluse,_4_7ecotourism,tank_utili,merge_survey"

// TankCSV has 6 rows; T6 is "Using only (2)" and is excluded on load
const TankCSV = TankHeader + `
T1,Department,Functioning,1,0.0,1,0,0,1,0,0,0,irrigation-daytoday,Matched (3)
T2,Department,Damaged,1,1.0,1,1,1,0,0,0,0,irrigation-fishing-livestock,Matched (3)
T3,Department,Functioning,2,0.0,1,0,0,0,0,0,0,irrigation only,Matched (3)
T4,Forest,Functioning,2,1.0,0,0,1,1,0,1,0,irrigation-livestock,Matched (3)
T5,Forest,Non-functioning,3,,,,,,,,,,Master only (1)
T6,Department,Functioning,1,0.0,1,0,0,0,0,0,0,irrigation only,Using only (2)
`

// DistrictCSV covers three districts
const DistrictCSV = `districtname,dist_pop,dist_func,dist_damaged,dist_nonfunc,dist_pop_func,dist_pop_damaged,dist_pop_nonfunc
Anuradhapura,860000,70.1,20.2,9.7,60.5,30,9.5
Kurunegala,1610000,55,30,15,45.2,40.1,14.7
Mullaitivu,92000,40,35,25,21,40,39
`

// DSDCSV has four DSDs over the three districts
const DSDCSV = `adm3_en,adm2_en,asc_pop_func,asc_pop_damaged,asc_pop_nonfunc
Kebithigollewa,Anuradhapura,55.555,30,14.445
Medawachchiya,Anuradhapura,62,25,13
Polpithigama,Kurunegala,48.2,40,11.8
Maritimepattu,Mullaitivu,21,40,39
`

// PovertyCSV joins two of the three districts; Colombo has no access row
const PovertyCSV = `District_name,pov2002,pov2012,district_key,hh_agri,pop_agri
Anuradhapura,20.4,7.6,Anuradhapura,45.1,50.2
Kurunegala,25.4,11.7,Kurunegala,38.2,40.5
Colombo,6.4,1.4,Colombo,3.1,2.8
`

// DSDPovertyCSV has a headcount for every fixture DSD
const DSDPovertyCSV = `ADM2_EN,ADM3_EN,Estimated headcount index (%)
Anuradhapura,Kebithigollewa,12.345
Anuradhapura,Medawachchiya,9.8
Kurunegala,Polpithigama,14.2
Mullaitivu,Maritimepattu,30.1
`

// FixtureMap is the one map image written by WriteDataFixture
const FixtureMap = "tank_irrigation.jpg"

// Expected shape of the fixture after loading
const (
	FixtureTanks     = 5
	FixtureDistricts = 3
	FixtureMaskRows  = 4
)

// FixtureDistrictOptions are the filter choices of the fixture in order
var FixtureDistrictOptions = []string{"Anuradhapura", "Kurunegala", "Mullaitivu"}

// WriteDataFixture writes the fixture datasets under a temp directory using
// the default file names and returns a data configuration pointing at it
func WriteDataFixture(t *testing.T) config.DataConfig {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		config.DefaultTankFile:       TankCSV,
		config.DefaultDistrictFile:   DistrictCSV,
		config.DefaultDSDFile:        DSDCSV,
		config.DefaultPovertyFile:    PovertyCSV,
		config.DefaultDSDPovertyFile: DSDPovertyCSV,
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
	}

	maps := filepath.Join(dir, config.DefaultMapsDir)
	if err := os.MkdirAll(maps, 0755); err != nil {
		t.Fatalf("create maps dir: %v", err)
	}
	writeFile(t, filepath.Join(maps, FixtureMap), "\xff\xd8\xff\xe0fixture")

	return config.DataConfig{
		BaseDir:        dir,
		TankFile:       config.DefaultTankFile,
		DSDFile:        config.DefaultDSDFile,
		DistrictFile:   config.DefaultDistrictFile,
		PovertyFile:    config.DefaultPovertyFile,
		DSDPovertyFile: config.DefaultDSDPovertyFile,
		MapsDir:        config.DefaultMapsDir,
		OutputDir:      config.DefaultOutputDir,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
