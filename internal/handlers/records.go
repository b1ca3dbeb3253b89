package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/internal/services"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// RecordServiceInterface manages saved credentials.
type RecordServiceInterface interface {
	Create(ctx context.Context, userID string, in services.NewRecord) (*models.Record, error)
	List(ctx context.Context, userID string) ([]*models.Record, error)
	Update(ctx context.Context, userID, id string, patch services.RecordPatch) (*models.Record, error)
	Delete(ctx context.Context, userID, id string) error
}

// RecordHandler serves the /passwords endpoints for the token's user.
type RecordHandler struct {
	service RecordServiceInterface
	logger  *slog.Logger
}

func NewRecordHandler(service RecordServiceInterface, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{service: service, logger: logger}
}

// ============================================================================
// DTOs
// ============================================================================

type CreateRecordRequest struct {
	Site     string `json:"site" validate:"max=255"`
	Login    string `json:"login" validate:"max=255"`
	Password string `json:"password" validate:"max=1024"`
	Notes    string `json:"notes" validate:"max=4096"`
}

// UpdateRecordRequest changes only the fields present in the body.
type UpdateRecordRequest struct {
	Site     *string `json:"site" validate:"omitempty,max=255"`
	Login    *string `json:"login" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,max=1024"`
	Notes    *string `json:"notes" validate:"omitempty,max=4096"`
}

type RecordResponse struct {
	ID        string    `json:"id"`
	Site      string    `json:"site"`
	Login     string    `json:"login"`
	Password  string    `json:"password"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type RecordListResponse struct {
	pkghttp.Result
	Records []RecordResponse `json:"records"`
}

type RecordCreatedResponse struct {
	pkghttp.Result
	ID string `json:"id"`
}

func toRecordResponse(rec *models.Record) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		Site:      rec.Site,
		Login:     rec.Login,
		Password:  rec.Password,
		Notes:     rec.Notes,
		CreatedAt: rec.CreatedAt,
	}
}

// ============================================================================
// Handlers
// ============================================================================

// List returns the caller's records, newest first.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	records, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	resp := RecordListResponse{Result: pkghttp.Success(), Records: make([]RecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordResponse(rec))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Create stores a record. Site, login and password are required.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateRecordRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	rec, err := h.service.Create(r.Context(), claims.UserID, services.NewRecord{
		Site:     req.Site,
		Login:    req.Login,
		Password: req.Password,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, RecordCreatedResponse{Result: pkghttp.Success(), ID: rec.ID})
}

// Update applies a partial update to one of the caller's records.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateRecordRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	_, err := h.service.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), services.RecordPatch{
		Site:     req.Site,
		Login:    req.Login,
		Password: req.Password,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Success())
}

// Delete removes one of the caller's records.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Success())
}
