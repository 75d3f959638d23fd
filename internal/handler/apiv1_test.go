package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
)

// memEntryStore is a minimal in-memory service.EntryStore for handler
// tests; the transactional MySQL behavior is covered by the repository.
type memEntryStore struct {
	entries map[uint64]*model.TimeLogEntry
	nextID  uint64
}

func newMemEntryStore() *memEntryStore {
	return &memEntryStore{entries: make(map[uint64]*model.TimeLogEntry)}
}

func (m *memEntryStore) activeOf(ownerID uint64) *model.TimeLogEntry {
	for _, e := range m.entries {
		if e.OwnerID == ownerID && e.EndTime == nil {
			return e
		}
	}
	return nil
}

func (m *memEntryStore) Active(_ context.Context, ownerID uint64) (*model.TimeLogEntry, error) {
	if e := m.activeOf(ownerID); e != nil {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memEntryStore) StartNew(_ context.Context, entry *model.TimeLogEntry) (*model.TimeLogEntry, error) {
	var stopped *model.TimeLogEntry
	if prev := m.activeOf(entry.OwnerID); prev != nil {
		end := entry.StartTime
		prev.EndTime = &end
		cp := *prev
		stopped = &cp
	}
	m.nextID++
	entry.ID = m.nextID
	cp := *entry
	m.entries[entry.ID] = &cp
	return stopped, nil
}

func (m *memEntryStore) StopActive(_ context.Context, ownerID uint64, at time.Time) (*model.TimeLogEntry, error) {
	e := m.activeOf(ownerID)
	if e == nil {
		return nil, repository.ErrNotFound
	}
	e.EndTime = &at
	cp := *e
	return &cp, nil
}

func (m *memEntryStore) ListRange(_ context.Context, ownerID uint64, from, to time.Time, offset, limit int) ([]model.TimeLogEntry, int64, error) {
	var all []model.TimeLogEntry
	for _, e := range m.entries {
		if e.OwnerID == ownerID && !e.StartTime.Before(from) && e.StartTime.Before(to) {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memEntryStore) GetByID(_ context.Context, ownerID, id uint64) (*model.TimeLogEntry, error) {
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEntryStore) Update(_ context.Context, entry *model.TimeLogEntry) error {
	e, ok := m.entries[entry.ID]
	if !ok || e.OwnerID != entry.OwnerID {
		return repository.ErrNotFound
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *memEntryStore) Delete(_ context.Context, ownerID, id uint64) error {
	e, ok := m.entries[id]
	if !ok || e.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

type staticTokenResolver map[string]uint64

func (s staticTokenResolver) UserIDByToken(_ context.Context, token string) (uint64, error) {
	if uid, ok := s[token]; ok {
		return uid, nil
	}
	return 0, repository.ErrNotFound
}

// newAPIServer assembles the /api/v1 surface exactly as the router does:
// token filter in front, handlers behind.
func newAPIServer(store service.EntryStore) *echo.Echo {
	e := echo.New()
	limiter := service.NewFailedAttemptLimiter(10, time.Minute)
	h := NewPublicAPIHandler(service.NewEntryService(store, nil))

	api := e.Group("/api/v1", middleware.APITokenAuth(limiter, staticTokenResolver{"good-token": 1}))
	api.POST("/start", h.Start)
	api.POST("/stop", h.Stop)
	api.GET("/active", h.Active)
	api.GET("/", h.List)
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAPIStartEchoesTitleAndMetadata(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	rec := doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"Reading mail","metadata":["inbox","am"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Reading mail", body["title"])
	assert.Equal(t, []any{"inbox", "am"}, body["metadata"])
}

func TestAPIStartRejectsBlankAndOversizedTitles(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	rec := doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TITLE_BLANK", decodeBody(t, rec)["errorCode"])

	long := strings.Repeat("x", service.MaxTitleLen+1)
	rec = doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TITLE_TOO_LONG", decodeBody(t, rec)["errorCode"])
}

func TestAPIStopIsAlways200(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	rec := doJSON(e, http.MethodPost, "/api/v1/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["stopped"])

	doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"Task"}`)
	rec = doJSON(e, http.MethodPost, "/api/v1/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["stopped"])
}

func TestAPIActive(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	rec := doJSON(e, http.MethodGet, "/api/v1/active", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_ACTIVE_ENTRY", decodeBody(t, rec)["errorCode"])

	doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"Task"}`)
	rec = doJSON(e, http.MethodGet, "/api/v1/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decodeBody(t, rec)["entry"].(map[string]any)
	assert.Equal(t, "Task", entry["title"])
}

func TestAPIListValidatesRange(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	at := time.Now().UTC().Format(time.RFC3339)
	rec := doJSON(e, http.MethodGet, "/api/v1/?startTimeFrom="+at+"&startTimeTo="+at, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_TIME_RANGE", decodeBody(t, rec)["errorCode"])

	rec = doJSON(e, http.MethodGet, "/api/v1/?startTimeFrom=bogus&startTimeTo="+at, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIListReturnsPageEnvelope(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	doJSON(e, http.MethodPost, "/api/v1/start", `{"title":"Task"}`)

	from := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	to := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	rec := doJSON(e, http.MethodGet, "/api/v1/?startTimeFrom="+from+"&startTimeTo="+to+"&page=0&size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 0, body["page"])
	assert.EqualValues(t, 10, body["size"])
	assert.EqualValues(t, 1, body["totalElements"])
	assert.EqualValues(t, 1, body["totalPages"])
	assert.Len(t, body["entries"], 1)
}

func TestAPIRequiresToken(t *testing.T) {
	e := newAPIServer(newMemEntryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/active", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_API_TOKEN", decodeBody(t, rec)["errorCode"])
}
