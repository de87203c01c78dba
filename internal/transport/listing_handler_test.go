package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uchejames/vibeshop/internal/domain"
	"github.com/uchejames/vibeshop/internal/middleware"
	"github.com/uchejames/vibeshop/internal/poster"
	"github.com/uchejames/vibeshop/internal/repository"
	"github.com/uchejames/vibeshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testImage = "data:image/png;base64,iVBORw0KGgo="

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func (s stubGenerator) Model() string { return "stub" }

type brokenRenderer struct{}

func (brokenRenderer) Render(title, category string) (*poster.Image, error) {
	return nil, errors.New("renderer crashed")
}

func (brokenRenderer) Name() string { return "broken" }

type memoryRepository struct {
	records []*domain.GenerationRecord
}

func (m *memoryRepository) Create(ctx context.Context, record *domain.GenerationRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memoryRepository) ListRecent(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if limit > len(m.records) {
		limit = len(m.records)
	}
	return m.records[len(m.records)-limit:], nil
}

func (m *memoryRepository) CountBySource(ctx context.Context) (map[domain.ListingSource]int64, error) {
	counts := map[domain.ListingSource]int64{}
	for _, r := range m.records {
		counts[r.Source]++
	}
	return counts, nil
}

func newRouter(svc service.ListingService, admin []func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()
	NewListingHandler(svc, zap.NewNop()).RegisterRoutes(router, nil, admin)
	return router
}

func offlineService(repo repository.GenerationRepository) service.ListingService {
	return service.NewListingService(stubGenerator{err: errors.New("offline")}, poster.NewVectorRenderer(poster.DefaultBrand), repo, zap.NewNop())
}

func postProduct(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/process-product", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestProcessProduct_BeautyFallback(t *testing.T) {
	handler := newRouter(offlineService(nil), nil)

	w := postProduct(handler, `{"imageUrl":"`+testImage+`","category":"beauty"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, testImage, body["removedBg"])
	assert.Equal(t, testImage, body["enhanced"])
	assert.Contains(t, body, "shareLink")
	assert.Nil(t, body["shareLink"])

	listing := body["listing"].(map[string]interface{})
	assert.Equal(t, "Premium Beauty Product", listing["title"])
	assert.Equal(t, "₦4,500 - ₦28,000", listing["price"])
	assert.Equal(t, []interface{}{"natural", "effective", "premium", "quality", "safe"}, listing["tags"])

	width, height, err := poster.Dimensions(body["poster"].(string))
	require.NoError(t, err)
	assert.Equal(t, poster.Width, width)
	assert.Equal(t, poster.Height, height)
}

func TestProcessProduct_MissingImage(t *testing.T) {
	handler := newRouter(offlineService(nil), nil)

	for _, body := range []string{`{}`, `{"imageUrl":""}`, `{"category":"art"}`, `{"imageUrl":"   "}`} {
		w := postProduct(handler, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"No image URL provided"}`, w.Body.String(), body)
	}
}

func TestProcessProduct_MalformedBody(t *testing.T) {
	handler := newRouter(offlineService(nil), nil)

	w := postProduct(handler, `{"imageUrl":`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Processing failed", body.Error)
	assert.NotEmpty(t, body.Details)
}

func TestProcessProduct_ChunkedBodyOverLimit(t *testing.T) {
	router := chi.NewRouter()
	limit := []func(http.Handler) http.Handler{middleware.BodyLimitMiddleware(1024, zap.NewNop())}
	NewListingHandler(offlineService(nil), zap.NewNop()).RegisterRoutes(router, limit, nil)

	body := `{"imageUrl":"data:image/png;base64,` + strings.Repeat("A", 4096) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/process-product", strings.NewReader(body))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, w.Body.String())
}

func TestProcessProduct_PosterFailure(t *testing.T) {
	svc := service.NewListingService(stubGenerator{err: errors.New("offline")}, brokenRenderer{}, nil, zap.NewNop())
	handler := newRouter(svc, nil)

	w := postProduct(handler, `{"imageUrl":"`+testImage+`"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Processing failed", body.Error)
	assert.Contains(t, body.Details, "renderer crashed")
}

func TestListCategories(t *testing.T) {
	handler := newRouter(offlineService(nil), nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Categories []CategoryResponse `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Categories, 8)
	assert.Equal(t, domain.CategoryFashion, body.Categories[0].ID)
	assert.Equal(t, "₦8,500 - ₦45,000", body.Categories[0].Price)
	assert.Len(t, body.Categories[0].Tags, domain.TagCount)
}

func TestGenerations(t *testing.T) {
	repo := &memoryRepository{}
	svc := offlineService(repo)
	handler := newRouter(svc, []func(http.Handler) http.Handler{})

	postProduct(handler, `{"imageUrl":"`+testImage+`","category":"furniture"}`)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Generations []domain.GenerationRecord `json:"generations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Generations, 1)
	assert.Equal(t, "furniture", list.Generations[0].RequestedCategory)
	assert.Equal(t, domain.CategoryFashion, list.Generations[0].ResolvedCategory)
	assert.Equal(t, domain.SourceFallback, list.Generations[0].Source)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats service.GenerationStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.BySource[domain.SourceFallback])
}

func TestGenerations_InvalidLimit(t *testing.T) {
	handler := newRouter(offlineService(&memoryRepository{}), []func(http.Handler) http.Handler{})

	for _, limit := range []string{"abc", "0", "101", "-3"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestGenerations_HistoryDisabled(t *testing.T) {
	handler := newRouter(offlineService(nil), []func(http.Handler) http.Handler{})

	for _, path := range []string{"/api/generations", "/api/generations/stats"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.JSONEq(t, `{"error":"Generation history is disabled"}`, w.Body.String(), path)
	}
}

func TestGenerations_NotMountedWithoutAdmin(t *testing.T) {
	handler := newRouter(offlineService(&memoryRepository{}), nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Feature: listing-generation, Property 30: Any category yields a complete listing over HTTP
func TestProperty_ProcessProductAlwaysReturnsListing(t *testing.T) {
	handler := newRouter(service.NewListingService(
		stubGenerator{text: `{"title":"Partial"}`},
		poster.NewVectorRenderer(poster.DefaultBrand),
		nil,
		zap.NewNop(),
	), nil)

	properties := gopter.NewProperties(nil)

	properties.Property("200 with five tags for any category string", prop.ForAll(
		func(category string) bool {
			payload, _ := json.Marshal(ProcessProductRequest{ImageURL: testImage, Category: category})
			req := httptest.NewRequest(http.MethodPost, "/api/process-product", bytes.NewReader(payload))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				return false
			}
			var result domain.ListingResult
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				return false
			}
			return result.Listing.Title == "Partial" &&
				len(result.Listing.Tags) == domain.TagCount &&
				result.RemovedBg == testImage
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
