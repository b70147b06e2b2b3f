package report

import (
	"errors"
	"fmt"
	"time"

	"tankreport/internal/dataset"
)

// ErrUnknownSection is returned for a section name the report does not have
var ErrUnknownSection = errors.New("unknown report section")

// Section names, in report order
const (
	SectionHighlights            = "highlights"
	SectionOwnership             = "ownership"
	SectionOwnershipShare        = "ownership_share"
	SectionFunctionality         = "functionality"
	SectionEstablishing          = "establishing"
	SectionRenovation            = "renovation"
	SectionUtilization           = "utilization"
	SectionTopCombinations       = "top_combinations"
	SectionUtilizationChoices    = "utilization_choices"
	SectionDistrictFunctionality = "district_functionality"
	SectionDistrictAccess        = "district_access"
	SectionPovertyCorrelation    = "poverty_correlation"
	SectionDSDMask               = "dsd_mask"
	SectionDSDScatter            = "dsd_scatter"
	SectionDistricts             = "districts"
	SectionMaps                  = "maps"
	SectionDatasets              = "datasets"
)

// Sections lists every section name in report order
var Sections = []string{
	SectionHighlights,
	SectionOwnership,
	SectionOwnershipShare,
	SectionFunctionality,
	SectionEstablishing,
	SectionRenovation,
	SectionUtilization,
	SectionTopCombinations,
	SectionUtilizationChoices,
	SectionDistrictFunctionality,
	SectionDistrictAccess,
	SectionPovertyCorrelation,
	SectionDSDMask,
	SectionDSDScatter,
	SectionDistricts,
	SectionMaps,
	SectionDatasets,
}

// Report holds every derived table of one pass. DSDMask is unfiltered;
// the district filter is applied on top of it with FilterMaskTable.
type Report struct {
	PassID      string    `json:"pass_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Highlights            Highlights                 `json:"highlights"`
	Ownership             OwnershipSummary           `json:"ownership"`
	OwnershipShare        []CategoryCount            `json:"ownership_share"`
	Functionality         []CategoryCount            `json:"functionality"`
	Establishing          CrossTab                   `json:"establishing"`
	Renovation            CrossTab                   `json:"renovation"`
	Utilization           []UtilizationShare         `json:"utilization"`
	TopCombinations       []Combination              `json:"top_combinations"`
	UtilizationChoices    []CategoryCount            `json:"utilization_choices"`
	DistrictFunctionality []DistrictFunctionalityRow `json:"district_functionality"`
	DistrictAccess        []DistrictAccessRow        `json:"district_access"`
	PovertyCorrelation    PovertyCorrelation         `json:"poverty_correlation"`
	DSDMask               MaskTable                  `json:"dsd_mask"`
	DSDScatter            Scatter                    `json:"dsd_scatter"`
	Districts             []string                   `json:"districts"`
	Maps                  []MapAsset                 `json:"maps"`
	Datasets              []dataset.Stats            `json:"datasets"`
}

// Build runs every derivation over w. Each derivation only reads w.
func Build(w *dataset.Working) *Report {
	access := DistrictAccess(w)
	mask := DSDMask(w)

	return &Report{
		GeneratedAt:           time.Now().UTC(),
		Highlights:            Introduction(w),
		Ownership:             Ownership(w),
		OwnershipShare:        OwnershipCounts(w),
		Functionality:         Functionality(w),
		Establishing:          Establishing(w),
		Renovation:            Renovation(w),
		Utilization:           Utilization(w),
		TopCombinations:       TopCombinations(),
		UtilizationChoices:    UtilizationChoices(w),
		DistrictFunctionality: DistrictFunctionality(w),
		DistrictAccess:        access,
		PovertyCorrelation:    JoinPoverty(access, w.Poverty),
		DSDMask:               mask,
		DSDScatter:            DSDScatter(mask),
		Districts:             DistrictOptions(w),
		Maps:                  Maps(),
		Datasets:              w.Stats,
	}
}

// Section returns one derived table by name
func (r *Report) Section(name string) (any, error) {
	switch name {
	case SectionHighlights:
		return r.Highlights, nil
	case SectionOwnership:
		return r.Ownership, nil
	case SectionOwnershipShare:
		return r.OwnershipShare, nil
	case SectionFunctionality:
		return r.Functionality, nil
	case SectionEstablishing:
		return r.Establishing, nil
	case SectionRenovation:
		return r.Renovation, nil
	case SectionUtilization:
		return r.Utilization, nil
	case SectionTopCombinations:
		return r.TopCombinations, nil
	case SectionUtilizationChoices:
		return r.UtilizationChoices, nil
	case SectionDistrictFunctionality:
		return r.DistrictFunctionality, nil
	case SectionDistrictAccess:
		return r.DistrictAccess, nil
	case SectionPovertyCorrelation:
		return r.PovertyCorrelation, nil
	case SectionDSDMask:
		return r.DSDMask, nil
	case SectionDSDScatter:
		return r.DSDScatter, nil
	case SectionDistricts:
		return r.Districts, nil
	case SectionMaps:
		return r.Maps, nil
	case SectionDatasets:
		return r.Datasets, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// FilterDSD applies a district selection to the mask table. A nil
// selection means every district.
func (r *Report) FilterDSD(selected []string) MaskTable {
	if selected == nil {
		selected = r.Districts
	}
	return FilterMaskTable(r.DSDMask, selected)
}
