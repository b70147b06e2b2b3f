package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tankreport/internal/charts"
	"tankreport/internal/config"
	"tankreport/internal/dataset"
	apierrors "tankreport/internal/errors"
	"tankreport/internal/files"
	"tankreport/internal/middleware"
	"tankreport/internal/report"
	"tankreport/internal/services"
	"tankreport/internal/shared/testutil"
)

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context) (*report.Report, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportService) Section(ctx context.Context, name string) (any, error) {
	args := m.Called(name)
	return args.Get(0), args.Error(1)
}

func (m *MockReportService) Frame(ctx context.Context, name string) (report.Frame, error) {
	args := m.Called(name)
	return args.Get(0).(report.Frame), args.Error(1)
}

func (m *MockReportService) Frames(ctx context.Context) ([]report.Frame, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.Frame), args.Error(1)
}

func (m *MockReportService) Chart(ctx context.Context, name string) (report.Chart, error) {
	args := m.Called(name)
	return args.Get(0).(report.Chart), args.Error(1)
}

func (m *MockReportService) Districts(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReportService) FilterDSD(ctx context.Context, districts []string) (report.MaskTable, error) {
	args := m.Called(districts)
	return args.Get(0).(report.MaskTable), args.Error(1)
}

func (m *MockReportService) MapPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

func newTestRouter(svc ReportService) http.Handler {
	return newRouter(svc, files.NewDiscovery(config.NewPaths(config.DataConfig{})))
}

func newRouter(svc ReportService, discovery *files.Discovery) http.Handler {
	logger, _ := testutil.NewTestLogger(nil)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := middleware.NewValidationMiddleware(logger, errorHandler)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/report", NewReportHandler(svc, charts.NewRenderer(logger), validation, errorHandler, logger).Routes())
	r.Mount("/maps", NewMapsHandler(svc, discovery, errorHandler, logger).Routes())
	return r
}

func fixtureRouter(t *testing.T) http.Handler {
	t.Helper()
	paths := config.NewPaths(testutil.WriteDataFixture(t))
	logger, _ := testutil.NewTestLogger(nil)
	return newRouter(services.NewReportService(paths, nil, logger), files.NewDiscovery(paths))
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestReportHandler_GetReport(t *testing.T) {
	rec := do(t, fixtureRouter(t), http.MethodGet, "/api/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["pass_id"])
	assert.Equal(t, float64(testutil.FixtureMaskRows), data["dsd_mask"].(map[string]any)["count"])
	assert.Len(t, data["maps"], len(report.Maps()))
}

func TestReportHandler_Districts(t *testing.T) {
	rec := do(t, fixtureRouter(t), http.MethodGet, "/api/report/districts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(len(testutil.FixtureDistrictOptions)), body["count"])
	assert.Equal(t, []any{"Anuradhapura", "Kurunegala", "Mullaitivu"}, body["data"])
}

func TestReportHandler_GetDSD(t *testing.T) {
	router := fixtureRouter(t)

	tests := []struct {
		name      string
		target    string
		wantCount int
	}{
		{"no selection means all", "/api/report/dsd", testutil.FixtureMaskRows},
		{"one district", "/api/report/dsd?district=Anuradhapura", 2},
		{"two districts", "/api/report/dsd?district=Anuradhapura&district=Mullaitivu", 3},
		{"explicit none", "/api/report/dsd?none=1", 0},
		{"unknown district", "/api/report/dsd?district=Colombo", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, strconv.Itoa(tt.wantCount), rec.Header().Get(ResultCountHeader))

			body := decode(t, rec)
			assert.Equal(t, float64(tt.wantCount), body["count"])
			data := body["data"].(map[string]any)
			rows := data["rows"]
			require.NotNil(t, rows, "rows must serialise as a list, never null")
			assert.Len(t, rows, tt.wantCount)
			assert.Equal(t, rowDSDs(data), barLabels(data["chart"]))
		})
	}
}

// rowDSDs lists the DSD of every row of a decoded mask table
func rowDSDs(table map[string]any) []string {
	dsds := []string{}
	for _, row := range table["rows"].([]any) {
		dsds = append(dsds, row.(map[string]any)["dsd"].(string))
	}
	return dsds
}

// barLabels lists the bar labels of a decoded chart
func barLabels(chart any) []string {
	labels := []string{}
	bars, _ := chart.(map[string]any)["bars"].([]any)
	for _, bar := range bars {
		labels = append(labels, bar.(map[string]any)["label"].(string))
	}
	return labels
}

func TestReportHandler_GetDSDAsCSV(t *testing.T) {
	rec := do(t, fixtureRouter(t), http.MethodGet, "/api/report/dsd?district=Anuradhapura&format=csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "District,DSD,"))
	assert.Contains(t, rec.Body.String(), "Anuradhapura,Kebithigollewa,55.56,")
}

func TestReportHandler_FilterDSD(t *testing.T) {
	router := fixtureRouter(t)

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
		wantCount   int
	}{
		{"selection", `{"districts":["Kurunegala"]}`, "application/json", http.StatusOK, 1},
		{"empty selection", `{"districts":[]}`, "application/json", http.StatusOK, 0},
		{"null selection", `{"districts":null}`, "application/json", http.StatusOK, testutil.FixtureMaskRows},
		{"blank district", `{"districts":[""]}`, "application/json", http.StatusBadRequest, 0},
		{"invalid json", `{"districts":`, "application/json", http.StatusBadRequest, 0},
		{"wrong content type", `{"districts":[]}`, "text/plain", http.StatusUnsupportedMediaType, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/report/dsd/filter", strings.NewReader(tt.body), tt.contentType)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, strconv.Itoa(tt.wantCount), rec.Header().Get(ResultCountHeader))
			body := decode(t, rec)
			assert.Equal(t, float64(tt.wantCount), body["count"])
			assert.Len(t, barLabels(body["data"].(map[string]any)["chart"]), tt.wantCount)
		})
	}
}

func TestReportHandler_FilterDSDTooManyDistricts(t *testing.T) {
	districts := make([]string, 65)
	for i := range districts {
		districts[i] = "D"
	}
	payload, err := json.Marshal(map[string]any{"districts": districts})
	require.NoError(t, err)

	svc := new(MockReportService)
	rec := do(t, newTestRouter(svc), http.MethodPost, "/api/report/dsd/filter", bytes.NewReader(payload), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
	svc.AssertNotCalled(t, "FilterDSD", mock.Anything)
}

func TestReportHandler_GetSection(t *testing.T) {
	router := fixtureRouter(t)

	t.Run("json", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/ownership", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, report.SectionOwnership, body["section"])
		total := body["data"].(map[string]any)["total"].(map[string]any)
		assert.Equal(t, float64(testutil.FixtureTanks), total["mapped"])
		assert.Equal(t, 80.0, total["collection_rate"])
	})

	t.Run("csv", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/ownership?format=csv", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "ownership.csv")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Ownership,N. tanks mapped"))
		assert.Contains(t, rec.Body.String(), "Total,5,4,80")
	})

	t.Run("bad format", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/ownership?format=xml", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown section", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/nope", nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeSectionNotFound, decode(t, rec)["type"])
	})

	t.Run("section without table view", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/highlights?format=csv", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReportHandler_Charts(t *testing.T) {
	router := fixtureRouter(t)

	rec := do(t, router, http.MethodGet, "/api/report/charts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(len(report.Charts)), decode(t, rec)["count"])

	rec = do(t, router, http.MethodGet, "/api/report/charts/functionality", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, string(report.KindBar), chart["kind"])

	rec = do(t, router, http.MethodGet, "/api/report/charts/dsd_poverty.png", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypePNG, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, router, http.MethodGet, "/api/report/charts/pie.png", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_DSDAccessChart(t *testing.T) {
	router := fixtureRouter(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"one district", "/api/report/charts/dsd_access?district=Kurunegala", []string{"Polpithigama"}},
		{"two districts", "/api/report/charts/dsd_access?district=Kurunegala&district=Mullaitivu", []string{"Polpithigama", "Maritimepattu"}},
		{"explicit none", "/api/report/charts/dsd_access?none=true", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			chart := decode(t, rec)["data"]
			assert.Equal(t, report.ChartDSDAccess, chart.(map[string]any)["name"])
			assert.ElementsMatch(t, tt.want, barLabels(chart))
		})
	}

	t.Run("no selection means all", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/charts/dsd_access", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, barLabels(decode(t, rec)["data"]), testutil.FixtureMaskRows)
	})

	t.Run("png of a selection", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/charts/dsd_access.png?district=Anuradhapura", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("blank district", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/report/charts/dsd_access?district=", nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
	})

	t.Run("selection goes through the filter", func(t *testing.T) {
		table := report.FilterMaskTable(report.MaskTable{Rows: []report.MaskRow{
			{District: "X", DSD: "x1", AccessFunctioning: 40},
			{District: "Y", DSD: "y1", AccessFunctioning: 60},
		}, Count: 2}, []string{"X"})
		svc := new(MockReportService)
		svc.On("FilterDSD", []string{"X"}).Return(table, nil)

		rec := do(t, newTestRouter(svc), http.MethodGet, "/api/report/charts/dsd_access?district=X", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"x1"}, barLabels(decode(t, rec)["data"]))
		svc.AssertExpectations(t)
		svc.AssertNotCalled(t, "Chart", mock.Anything)
	})
}

func TestReportHandler_ExportWorkbook(t *testing.T) {
	rec := do(t, fixtureRouter(t), http.MethodGet, "/api/report/export.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, report.SectionOwnership)
	assert.Contains(t, sheets, report.SectionDSDMask)
}

func TestReportHandler_LoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing file",
			err:        &dataset.LoadError{Dataset: dataset.NameTank, Path: "x.csv", Err: dataset.ErrFileNotFound},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeDataNotFound,
		},
		{
			name:       "missing column",
			err:        &dataset.LoadError{Dataset: dataset.NameDSD, Path: "y.csv", Column: "adm3_en", Err: dataset.ErrMissingColumn},
			wantStatus: http.StatusInternalServerError,
			wantType:   apierrors.TypeDataCorrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			svc.On("Generate").Return(nil, tt.err)

			rec := do(t, newTestRouter(svc), http.MethodGet, "/api/report", nil, "")
			require.Equal(t, tt.wantStatus, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.NotContains(t, body, "data", "no partial report on a failed pass")
			svc.AssertExpectations(t)
		})
	}
}

func TestMapsHandler(t *testing.T) {
	router := fixtureRouter(t)

	rec := do(t, router, http.MethodGet, "/maps/"+testutil.FixtureMap, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\xff\xd8")))

	rec = do(t, router, http.MethodGet, "/maps/"+config.DefaultTankFile, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/maps/tank_agri.jpg", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapsHandler_List(t *testing.T) {
	dataCfg := testutil.WriteDataFixture(t)
	paths := config.NewPaths(dataCfg)
	require.NoError(t, os.WriteFile(filepath.Join(paths.MapsDir, "sketch.png"), []byte("\x89PNG"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(paths.MapsDir, "notes.txt"), []byte("x"), 0644))

	logger, _ := testutil.NewTestLogger(nil)
	router := newRouter(services.NewReportService(paths, nil, logger), files.NewDiscovery(paths))

	rec := do(t, router, http.MethodGet, "/maps/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(2), body["count"])
	images := body["data"].([]any)
	require.Len(t, images, 2)

	sketch := images[0].(map[string]any)
	assert.Equal(t, "sketch.png", sketch["name"])
	assert.Equal(t, false, sketch["known"])
	assert.NotContains(t, sketch, "url")

	known := images[1].(map[string]any)
	assert.Equal(t, testutil.FixtureMap, known["name"])
	assert.Equal(t, true, known["known"])
	assert.Equal(t, report.MapsURLPrefix+testutil.FixtureMap, known["url"])
	assert.NotContains(t, known, "path", "local paths stay private")

	t.Run("no maps directory", func(t *testing.T) {
		missing := config.NewPaths(config.DataConfig{BaseDir: t.TempDir(), MapsDir: "maps"})
		rec := do(t, newRouter(new(MockReportService), files.NewDiscovery(missing)), http.MethodGet, "/maps/", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decode(t, rec)["count"])
	})
}
