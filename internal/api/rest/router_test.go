package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/service"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/testutil"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/token"
)

type MockSiteStore struct {
	mock.Mock
}

func (m *MockSiteStore) GetOrCreateSite(ctx context.Context, site model.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteStore) GetOrCreateConfig(ctx context.Context, siteID uuid.UUID) (model.SiteConfig, error) {
	args := m.Called(ctx, siteID)
	return args.Get(0).(model.SiteConfig), args.Error(1)
}

func (m *MockSiteStore) UpdateStatus(ctx context.Context, siteID uuid.UUID, status model.SiteStatus) error {
	args := m.Called(ctx, siteID, status)
	return args.Error(0)
}

func (m *MockSiteStore) UpdateLogo(ctx context.Context, siteID uuid.UUID, logoURL string) error {
	args := m.Called(ctx, siteID, logoURL)
	return args.Error(0)
}

type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) List(ctx context.Context, collection model.Collection, siteID uuid.UUID) ([]model.Item, error) {
	args := m.Called(ctx, collection, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockContentStore) Create(ctx context.Context, collection model.Collection, item model.Item) (model.Item, error) {
	args := m.Called(ctx, collection, item)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockContentStore) Update(ctx context.Context, collection model.Collection, siteID uuid.UUID, id string, patch model.Patch) (model.Item, error) {
	args := m.Called(ctx, collection, siteID, id, patch)
	return args.Get(0).(model.Item), args.Error(1)
}

func (m *MockContentStore) Delete(ctx context.Context, collection model.Collection, siteID uuid.UUID, id string) error {
	args := m.Called(ctx, collection, siteID, id)
	return args.Error(0)
}

const testSecret = "test-secret"

type fixture struct {
	router       *gin.Engine
	siteStore    *MockSiteStore
	contentStore *MockContentStore
	resolver     *service.Site
	siteID       uuid.UUID
}

func newFixture(t *testing.T, resolve bool) *fixture {
	t.Helper()

	log := testutil.MakeNoopLogger()
	siteID := uuid.New()

	siteStore := new(MockSiteStore)
	resolver := service.NewSite(siteStore, log)

	if resolve {
		siteStore.On("GetOrCreateSite", mock.Anything, mock.Anything).Return(nil).Once()
		siteStore.On("GetOrCreateConfig", mock.Anything, siteID).
			Return(model.SiteConfig{SiteID: siteID, Status: model.SiteStatusLive}, nil).Once()

		_, err := resolver.Initialize(context.Background(), siteID, "mrpiglr.com", nil)
		require.NoError(t, err)
	}

	contentStore := new(MockContentStore)
	stores := make(map[string]*service.Content)
	for _, collection := range model.Collections() {
		stores[collection.Name] = service.NewContent(collection, resolver, contentStore, nil, log)
	}

	verifier := token.NewVerifier(testSecret)
	router := NewRouter(
		NewSiteHandler(resolver, nil, log),
		NewContentHandler(stores, log),
		verifier,
		[]string{"http://localhost:4321"},
		log,
	)

	return &fixture{
		router:       router,
		siteStore:    siteStore,
		contentStore: contentStore,
		resolver:     resolver,
		siteID:       siteID,
	}
}

func issueToken(t *testing.T, role string) string {
	t.Helper()

	v := token.NewVerifier(testSecret)
	tok, err := v.Issue(uuid.New(), "operator@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func doRequest(f *fixture, method, target, tok string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(testutil.MakeNoopLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_AnonymousRedirectedToLogin(t *testing.T) {
	f := newFixture(t, true)

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect"])
	assert.Equal(t, "/api/v1/admin/content/posts", body["return_to"])

	f.contentStore.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_InsufficientRoleForbidden(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "guest")

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", tok, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/admin", body["redirect"])
}

func TestRouter_AdminCanList(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	f.contentStore.On("List", mock.Anything, model.Posts, f.siteID).
		Return([]model.Item{{ID: uuid.NewString(), SiteID: f.siteID, Title: "First post"}}, nil)

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", tok, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []model.Item `json:"items"`
		Stale bool         `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)
	assert.False(t, body.Stale)
}

func TestRouter_ListServesStaleCacheOnFailure(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	f.contentStore.On("List", mock.Anything, model.Posts, f.siteID).
		Return([]model.Item{{ID: "1", Title: "Cached"}}, nil).Once()
	f.contentStore.On("List", mock.Anything, model.Posts, f.siteID).
		Return(nil, fmt.Errorf("connect: connection refused: %w", model.ErrRemoteUnavailable)).Once()

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []model.Item `json:"items"`
		Stale bool         `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)
	assert.True(t, body.Stale)
}

func TestRouter_ListBeforeResolution(t *testing.T) {
	f := newFixture(t, false)
	tok := issueToken(t, "admin")

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/posts", tok, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	f.contentStore.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_UnknownCollection(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	w := doRequest(f, http.MethodGet, "/api/v1/admin/content/albums", tok, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CreatePost(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	saved := model.Item{ID: uuid.NewString(), SiteID: f.siteID, Title: "New post", Slug: "new-post"}
	f.contentStore.On("Create", mock.Anything, model.Posts, mock.Anything).Return(saved, nil)

	payload, _ := json.Marshal(map[string]any{"title": "New post"})
	w := doRequest(f, http.MethodPost, "/api/v1/admin/content/posts", tok, payload)

	require.Equal(t, http.StatusCreated, w.Code)

	var item model.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "new-post", item.Slug)
}

func TestRouter_DeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	w := doRequest(f, http.MethodDelete, "/api/v1/admin/content/posts/some-id", tok, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.contentStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_DeleteConfirmed(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	f.contentStore.On("Delete", mock.Anything, model.Posts, f.siteID, "some-id").Return(nil)

	w := doRequest(f, http.MethodDelete, "/api/v1/admin/content/posts/some-id?confirm=true", tok, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	f.contentStore.AssertExpectations(t)
}

func TestSiteGet_BeforeResolutionAnswersDefault(t *testing.T) {
	f := newFixture(t, false)

	w := doRequest(f, http.MethodGet, "/api/v1/site", "", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Ready  bool   `json:"ready"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(model.SiteStatusLive), body.Status)
	assert.False(t, body.Ready)
}

func TestSiteGet_ReportsHoldingHint(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	f.siteStore.On("UpdateStatus", mock.Anything, f.siteID, model.SiteStatusMaintenance).Return(nil)

	payload, _ := json.Marshal(map[string]string{"status": "maintenance"})
	w := doRequest(f, http.MethodPut, "/api/v1/admin/site/status", tok, payload)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(f, http.MethodGet, "/api/v1/site", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/maintenance", body["holding"])
}

func TestUpdateStatus_InvalidRejected(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	payload, _ := json.Marshal(map[string]string{"status": "exploded"})
	w := doRequest(f, http.MethodPut, "/api/v1/admin/site/status", tok, payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.siteStore.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_BeforeResolution(t *testing.T) {
	f := newFixture(t, false)
	tok := issueToken(t, "admin")

	payload, _ := json.Marshal(map[string]string{"status": "maintenance"})
	w := doRequest(f, http.MethodPut, "/api/v1/admin/site/status", tok, payload)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadLogo_NoMediaConfigured(t *testing.T) {
	f := newFixture(t, true)
	tok := issueToken(t, "admin")

	w := doRequest(f, http.MethodPost, "/api/v1/admin/site/logo", tok, nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
