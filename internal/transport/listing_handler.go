package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/uchejames/vibeshop/internal/catalog"
	"github.com/uchejames/vibeshop/internal/domain"
	"github.com/uchejames/vibeshop/internal/middleware"
	"github.com/uchejames/vibeshop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProcessProductRequest represents the generation request payload
type ProcessProductRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
	Category string `json:"category"`
}

// CategoryResponse describes one entry of the pricing table
type CategoryResponse struct {
	ID    domain.Category `json:"id"`
	Label string          `json:"label"`
	Min   int64           `json:"min"`
	Max   int64           `json:"max"`
	Price string          `json:"price"`
	Tags  []string        `json:"tags"`
}

// GenerationsQuery holds the history listing parameters
type GenerationsQuery struct {
	Limit int `validate:"gte=1,lte=100"`
}

// ListingHandler handles HTTP requests for listing generation
type ListingHandler struct {
	listingService service.ListingService
	logger         *zap.Logger
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the listing routes. generate wraps the generation
// endpoint; history routes are only mounted when admin is non-nil.
func (h *ListingHandler) RegisterRoutes(r chi.Router, generate, admin []func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)

		r.Group(func(r chi.Router) {
			r.Use(generate...)
			r.Post("/process-product", h.ProcessProduct)
		})

		if admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(admin...)
				r.Get("/generations", h.ListGenerations)
				r.Get("/generations/stats", h.GenerationStats)
			})
		}
	})
}

// ProcessProduct runs the listing pipeline for one uploaded image
func (h *ListingHandler) ProcessProduct(w http.ResponseWriter, r *http.Request) {
	var req ProcessProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if middleware.IsValidationError(err) {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessageNoImageURL)
			return
		}
		if middleware.IsBodyTooLarge(err) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, middleware.MessageBodyTooLarge)
			return
		}

		h.logger.Error("Failed to decode process-product request", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, middleware.MessageProcessingFailed, err.Error())
		return
	}

	result, err := h.listingService.Generate(r.Context(), domain.ListingRequest{
		ImageReference: req.ImageURL,
		Category:       req.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessageNoImageURL)
			return
		}

		h.logger.Error("Processing failed", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, middleware.MessageProcessingFailed, err.Error())
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// ListCategories returns the pricing table
func (h *ListingHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	entries := h.listingService.Categories()

	categories := make([]CategoryResponse, 0, len(entries))
	for _, entry := range entries {
		categories = append(categories, CategoryResponse{
			ID:    entry.Category,
			Label: entry.Label,
			Min:   entry.Min,
			Max:   entry.Max,
			Price: catalog.DisplayPrice(entry),
			Tags:  entry.Tags,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// ListGenerations returns the newest generation records
func (h *ListingHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	query := GenerationsQuery{Limit: 20}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "limit", Message: "Value must be a number"},
			})
			return
		}
		query.Limit = limit
	}

	if err := middleware.ValidateRequest(&query); err != nil {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return
	}

	records, err := h.listingService.RecentGenerations(r.Context(), query.Limit)
	if err != nil {
		h.handleHistoryError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"generations": records,
	})
}

// GenerationStats returns generation counts per listing source
func (h *ListingHandler) GenerationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.listingService.GenerationStats(r.Context())
	if err != nil {
		h.handleHistoryError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *ListingHandler) handleHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrHistoryDisabled) {
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "Generation history is disabled")
		return
	}

	h.logger.Error("Failed to read generation history", zap.Error(err))
	middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, "failed to read generation history", err.Error())
}
