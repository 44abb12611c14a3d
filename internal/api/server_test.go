package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghgledger/ghgledger/internal/engine"
	"github.com/ghgledger/ghgledger/internal/store"
)

type fakeRepo struct {
	records map[string]engine.Record
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]engine.Record)}
}

func (f *fakeRepo) LoadRecords(_ context.Context, _ string) ([]engine.Record, error) {
	out := make([]engine.Record, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRepo) SaveRecord(_ context.Context, _ string, rec engine.Record) error {
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeRepo) DeleteRecord(_ context.Context, id string) (bool, error) {
	_, ok := f.records[id]
	delete(f.records, id)
	return ok, nil
}

type fakeReports struct {
	reports map[uuid.UUID]store.Report
}

func newFakeReports() *fakeReports {
	return &fakeReports{reports: make(map[uuid.UUID]store.Report)}
}

func (f *fakeReports) CreateReport(_ context.Context, title, company string, year int) (store.Report, error) {
	rep := store.Report{ID: uuid.New(), Title: title, Company: company, Year: year}
	f.reports[rep.ID] = rep
	return rep, nil
}

func (f *fakeReports) GetReport(_ context.Context, id uuid.UUID) (store.Report, error) {
	rep, ok := f.reports[id]
	if !ok {
		return store.Report{}, store.ErrReportNotFound
	}
	return rep, nil
}

func (f *fakeReports) ListReports(_ context.Context) ([]store.Report, error) {
	out := make([]store.Report, 0, len(f.reports))
	for _, rep := range f.reports {
		out = append(out, rep)
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	// A nil report store skips report-existence checks so tests can use
	// arbitrary report IDs.
	return New(newFakeRepo(), nil, zerolog.Nop())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCalculateAddsRecord(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "100"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[calculateResponse](t, resp)
	require.True(t, out.Calculated)
	require.NotNil(t, out.Record)
	assert.InDelta(t, 0.268, out.Record.Emissions, 1e-9)
	assert.InDelta(t, 0.268, out.Results.Scope1, 1e-9)
	assert.InDelta(t, 0.268, out.Results.Total, 1e-9)

	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/r1/records", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[recordsResponse](t, resp)
	assert.Len(t, recs.Logs.Scope1Calculations, 1)
}

func TestCalculateNothingToAdd(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "not a number"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[calculateResponse](t, resp)
	assert.False(t, out.Calculated)
	assert.Nil(t, out.Record)
	assert.Zero(t, out.Results.Total)
}

func TestCalculateUnknownScope(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope("scope9"),
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "100"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveRecord(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "100"},
	})
	out := decode[calculateResponse](t, resp)
	require.NotNil(t, out.Record)

	resp = doJSON(t, s, http.MethodDelete, "/api/v1/reports/r1/records/"+out.Record.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[recordsResponse](t, resp)
	assert.Zero(t, recs.Results.Total)
	assert.Empty(t, recs.Logs.Scope1Calculations)

	resp = doJSON(t, s, http.MethodDelete, "/api/v1/reports/r1/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResetScope(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "100"},
	})
	doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope2,
		Input: engine.Input{EnergyType: "electricity", EnergyQuantity: "500"},
	})

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/reset", resetRequest{Scope: "scope2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[recordsResponse](t, resp)
	assert.Zero(t, recs.Results.Scope2)
	assert.InDelta(t, 0.268, recs.Results.Scope1, 1e-9)

	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/reset", resetRequest{Scope: "all"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs = decode[recordsResponse](t, resp)
	assert.Zero(t, recs.Results.Total)
}

func TestEditFlow(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "100"},
	})
	out := decode[calculateResponse](t, resp)
	require.NotNil(t, out.Record)
	originalID := out.Record.ID

	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/records/"+originalID+"/edit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Recalculating while editing replaces the record under a new ID.
	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/calculate", calculateRequest{
		Scope: engine.Scope1,
		Input: engine.Input{FuelType: "diesel", FuelQuantity: "200"},
	})
	out = decode[calculateResponse](t, resp)
	require.True(t, out.Calculated)
	assert.NotEqual(t, originalID, out.Record.ID)
	assert.InDelta(t, 0.536, out.Results.Scope1, 1e-9)

	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/r1/records", nil)
	recs := decode[recordsResponse](t, resp)
	assert.Len(t, recs.Logs.Scope1Calculations, 1)

	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/records/missing/edit", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports/r1/edit/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// recoveringRepo fails its first LoadRecords call and serves the stored
// records afterwards.
type recoveringRepo struct {
	fakeRepo
	failedOnce bool
}

func (r *recoveringRepo) LoadRecords(ctx context.Context, reportID string) ([]engine.Record, error) {
	if !r.failedOnce {
		r.failedOnce = true
		return nil, errors.New("connection refused")
	}
	return r.fakeRepo.LoadRecords(ctx, reportID)
}

func TestSessionLoadFailureIsNotCached(t *testing.T) {
	repo := &recoveringRepo{fakeRepo: *newFakeRepo()}
	repo.records["01ABC"] = engine.Record{
		ID:        "01ABC",
		Scope:     engine.Scope1,
		Source:    "DEFRA 2024",
		Quantity:  100,
		Unit:      "L",
		Emissions: 0.268,
	}
	s := New(repo, nil, zerolog.Nop())

	resp := doJSON(t, s, http.MethodGet, "/api/v1/reports/r1/records", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The failed load must not leave an empty session behind: the retry
	// reloads from the store and sees the persisted record.
	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/r1/records", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[recordsResponse](t, resp)
	require.Len(t, recs.Logs.Scope1Calculations, 1)
	assert.InDelta(t, 0.268, recs.Results.Total, 1e-9)
}

func TestReportEndpoints(t *testing.T) {
	reports := newFakeReports()
	s := New(newFakeRepo(), reports, zerolog.Nop())

	resp := doJSON(t, s, http.MethodPost, "/api/v1/reports", createReportRequest{
		Title: "Annual 2025", Company: "Acme", Year: 2025,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rep := decode[store.Report](t, resp)
	assert.Equal(t, "Annual 2025", rep.Title)

	resp = doJSON(t, s, http.MethodPost, "/api/v1/reports", createReportRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]store.Report](t, resp)
	assert.Len(t, list, 1)

	// Record routes validate the report ID when a report store is present.
	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/not-a-uuid/records", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/"+uuid.NewString()+"/records", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/v1/reports/"+rep.ID.String()+"/records", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
