package dataset

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dataset names used in errors, logs and metrics
const (
	NameTank       = "tank"
	NameDistrict   = "district"
	NameDSD        = "dsd"
	NamePoverty    = "poverty"
	NameDSDPoverty = "dsd_poverty"
)

// Sources are the five input file paths of one pass
type Sources struct {
	Tank       string
	District   string
	DSD        string
	Poverty    string
	DSDPoverty string
}

// Stats records the effect of the row filters on one dataset
type Stats struct {
	Dataset string `json:"dataset"`
	Path    string `json:"path"`
	Raw     int    `json:"raw"`
	Kept    int    `json:"kept"`
}

// Excluded is the number of rows the filters removed
func (s Stats) Excluded() int {
	return s.Raw - s.Kept
}

// Working holds the filtered input tables of one report pass. It is built
// once by Load and must not be modified afterwards.
type Working struct {
	Tanks      []Tank
	Districts  []District
	DSDs       []DSD
	Poverty    []Poverty
	DSDPoverty []DSDPoverty

	// Stats are listed in Sources field order
	Stats    []Stats
	LoadedAt time.Time
}

// Loader reads Sources into a Working
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load reads all sources with a discarding logger
func Load(ctx context.Context, src Sources) (*Working, error) {
	return NewLoader(nil).Load(ctx, src)
}

// Load reads the five files concurrently and applies the row filters.
// The first failure cancels the remaining reads and no Working is returned.
func (l *Loader) Load(ctx context.Context, src Sources) (*Working, error) {
	start := time.Now()
	w := &Working{Stats: make([]Stats, 5)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := open(gctx, NameTank, src.Tank)
		if err != nil {
			return err
		}
		tanks, err := parseTanks(t)
		if err != nil {
			return err
		}
		w.Tanks = FilterTanks(tanks)
		w.Stats[0] = Stats{Dataset: NameTank, Path: src.Tank, Raw: len(tanks), Kept: len(w.Tanks)}
		return nil
	})

	g.Go(func() error {
		t, err := open(gctx, NameDistrict, src.District)
		if err != nil {
			return err
		}
		districts, err := parseDistricts(t)
		if err != nil {
			return err
		}
		w.Districts = FilterDistricts(districts)
		w.Stats[1] = Stats{Dataset: NameDistrict, Path: src.District, Raw: len(districts), Kept: len(w.Districts)}
		return nil
	})

	g.Go(func() error {
		t, err := open(gctx, NameDSD, src.DSD)
		if err != nil {
			return err
		}
		dsds, err := parseDSDs(t)
		if err != nil {
			return err
		}
		w.DSDs = FilterDSDs(dsds)
		w.Stats[2] = Stats{Dataset: NameDSD, Path: src.DSD, Raw: len(dsds), Kept: len(w.DSDs)}
		return nil
	})

	g.Go(func() error {
		t, err := open(gctx, NamePoverty, src.Poverty)
		if err != nil {
			return err
		}
		rows, err := parsePoverty(t)
		if err != nil {
			return err
		}
		w.Poverty = rows
		w.Stats[3] = Stats{Dataset: NamePoverty, Path: src.Poverty, Raw: len(rows), Kept: len(rows)}
		return nil
	})

	g.Go(func() error {
		t, err := open(gctx, NameDSDPoverty, src.DSDPoverty)
		if err != nil {
			return err
		}
		rows, err := parseDSDPoverty(t)
		if err != nil {
			return err
		}
		w.DSDPoverty = rows
		w.Stats[4] = Stats{Dataset: NameDSDPoverty, Path: src.DSDPoverty, Raw: len(rows), Kept: len(rows)}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	w.LoadedAt = time.Now()
	for _, s := range w.Stats {
		l.logger.InfoContext(ctx, "dataset loaded",
			slog.String("dataset", s.Dataset),
			slog.String("path", s.Path),
			slog.Int("raw", s.Raw),
			slog.Int("kept", s.Kept),
			slog.Int("excluded", s.Excluded()))
	}
	l.logger.DebugContext(ctx, "load complete", slog.Duration("duration", time.Since(start)))

	return w, nil
}

func open(ctx context.Context, dataset, path string) (*table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readTable(dataset, path)
}

// FilterTanks drops tanks only present in the survey file
func FilterTanks(tanks []Tank) []Tank {
	out := make([]Tank, 0, len(tanks))
	for _, t := range tanks {
		if t.MergeSurvey == MergeUsingOnly {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterDistricts drops rows without a district name
func FilterDistricts(districts []District) []District {
	out := make([]District, 0, len(districts))
	for _, d := range districts {
		if d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FilterDSDs drops rows without a DSD or district name and rows of the
// excluded districts
func FilterDSDs(dsds []DSD) []DSD {
	out := make([]DSD, 0, len(dsds))
	for _, d := range dsds {
		if d.Name == "" || d.District == "" {
			continue
		}
		if slices.Contains(ExcludedDistricts, d.District) {
			continue
		}
		out = append(out, d)
	}
	return out
}
