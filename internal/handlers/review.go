package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
	"github.com/christian-rost/stammdatenmanagement/internal/database"
	"github.com/christian-rost/stammdatenmanagement/internal/export"
	"github.com/christian-rost/stammdatenmanagement/internal/middleware"
	"github.com/christian-rost/stammdatenmanagement/internal/services"
)

// ReviewHandler serves the duplicate review endpoints
type ReviewHandler struct {
	review       *services.ReviewService
	storeTimeout time.Duration
}

// NewReviewHandler creates a review handler. Each request's store calls are
// bounded by storeTimeout.
func NewReviewHandler(review *services.ReviewService, storeTimeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		review:       review,
		storeTimeout: storeTimeout,
	}
}

// SetupRoutes sets up review routes
func (h *ReviewHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/duplicates", h.handleListDuplicates)
	mux.HandleFunc("GET /api/duplicates/records", h.handleGroupRecords)
	mux.HandleFunc("POST /api/decisions", h.handleSaveDecision)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /api/export", h.handleExport)
}

func (h *ReviewHandler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.storeTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.storeTimeout)
}

// handleListDuplicates handles GET /api/duplicates. Without page or per_page
// the full list is returned as a bare array.
func (h *ReviewHandler) handleListDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	views, err := h.review.ListGroups(ctx)
	if err != nil {
		respondServiceError(w, "list duplicates", err)
		return
	}

	if api.PaginationRequested(r) {
		api.RespondJSON(w, http.StatusOK, api.Paginate(views, api.ParsePagination(r)))
		return
	}
	api.RespondJSON(w, http.StatusOK, views)
}

// handleGroupRecords handles GET /api/duplicates/records?name=&locality=
func (h *ReviewHandler) handleGroupRecords(w http.ResponseWriter, r *http.Request) {
	key, err := api.ParseGroupKey(r)
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	records, err := h.review.GetGroupRecords(ctx, key)
	if err != nil {
		respondServiceError(w, "fetch records", err)
		return
	}
	if records == nil {
		records = []database.MasterRecord{}
	}
	api.RespondJSON(w, http.StatusOK, records)
}

// handleSaveDecision handles POST /api/decisions
func (h *ReviewHandler) handleSaveDecision(w http.ResponseWriter, r *http.Request) {
	var req api.DecisionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	reviewer := middleware.GetUserFromContext(r.Context())
	if _, err := h.review.SubmitDecision(ctx, reviewer, api.DecisionRequestToInput(req)); err != nil {
		respondServiceError(w, "save decision", err)
		return
	}
	api.RespondMessage(w, "decision saved")
}

// handleStats handles GET /api/stats
func (h *ReviewHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	stats, err := h.review.GetStats(ctx)
	if err != nil {
		respondServiceError(w, "fetch stats", err)
		return
	}
	api.RespondJSON(w, http.StatusOK, stats)
}

// handleExport handles GET /api/export
func (h *ReviewHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	decisions, err := h.review.ListDecisions(ctx)
	if err != nil {
		respondServiceError(w, "export", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDecisionsCSV(&buf, decisions); err != nil {
		log.Printf("ReviewHandler: Failed to render export: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	api.RespondAttachment(w, export.ContentType, export.Filename, buf.Bytes())
}

// respondServiceError maps review service error kinds to HTTP responses. The
// cause is logged, never sent to the client.
func respondServiceError(w http.ResponseWriter, action string, err error) {
	kind := services.ErrorKind(err)
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		api.RespondErrorWithCode(w, http.StatusServiceUnavailable, kind, "Database not configured")
		return
	case errors.Is(err, services.ErrInvalidDecision):
		api.RespondErrorWithCode(w, http.StatusUnprocessableEntity, kind, err.Error())
		return
	}

	log.Printf("ReviewHandler: Failed to %s: %v", action, err)
	switch {
	case errors.Is(err, services.ErrDataUnavailable), errors.Is(err, services.ErrStorageWriteFailed):
		api.RespondErrorWithCode(w, http.StatusInternalServerError, kind, "Failed to "+action)
	default:
		api.RespondErrorWithCode(w, http.StatusInternalServerError, services.KindUnknown, "Failed to "+action)
	}
}
