package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/internal/services"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
	"github.com/BradenHooton/passguard/pkg/password"
)

// VerificationServiceInterface drives the login protocol.
type VerificationServiceInterface interface {
	SubmitCredentials(ctx context.Context, sessionID string, cred models.Credential) (*models.LoginOutcome, error)
	SubmitSecondFactor(ctx context.Context, sessionID, code string) (*models.LoginOutcome, error)
	Reset(sessionID string)
}

// EnrollmentServiceInterface registers accounts.
type EnrollmentServiceInterface interface {
	Register(ctx context.Context, username, password string) (*models.Enrollment, error)
	Policy() password.Policy
}

// AuthHandler handles registration and the staged login.
type AuthHandler struct {
	verification VerificationServiceInterface
	enrollment   EnrollmentServiceInterface
	proxies      *pkghttp.ProxyTrust
	logger       *slog.Logger
}

func NewAuthHandler(
	verification VerificationServiceInterface,
	enrollment EnrollmentServiceInterface,
	proxies *pkghttp.ProxyTrust,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		verification: verification,
		enrollment:   enrollment,
		proxies:      proxies,
		logger:       logger,
	}
}

// ============================================================================
// DTOs
// ============================================================================

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"max=256"`
}

type RegisterResponse struct {
	pkghttp.Result
	Username string `json:"username"`
	QRCode   string `json:"qr_code,omitempty"`
}

type LoginRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Username  string `json:"username" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,max=256"`
}

type TOTPRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	TOTP      string `json:"totp" validate:"required"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// LoginResponse reports the stage a login session reached.
type LoginResponse struct {
	pkghttp.Result
	SessionID         string       `json:"session_id,omitempty"`
	Stage             models.Stage `json:"stage"`
	Attempts          int          `json:"attempts"`
	AttemptsRemaining int          `json:"attempts_remaining"`
	AccessToken       string       `json:"access_token,omitempty"`
	Username          string       `json:"username,omitempty"`
}

type MeResponse struct {
	pkghttp.Result
	Username string `json:"username"`
}

func newLoginResponse(out *models.LoginOutcome) LoginResponse {
	resp := LoginResponse{
		Result:            pkghttp.Success(),
		SessionID:         out.SessionID,
		Stage:             out.Stage,
		Attempts:          out.Attempts,
		AttemptsRemaining: out.AttemptsRemaining,
		AccessToken:       out.AccessToken,
	}
	if out.Stage == models.StageAuthenticated {
		resp.SessionID = ""
		resp.Username = out.Username
	}
	return resp
}

// ============================================================================
// Handlers
// ============================================================================

// Register creates an account and returns its TOTP provisioning QR code.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if !validRequest(w, req) {
		return
	}

	ctx := h.withClientIP(r)
	enrollment, err := h.enrollment.Register(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, h.enrollment.Policy().MinLength)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Result:   pkghttp.Success(),
		Username: enrollment.Username,
		QRCode:   enrollment.ProvisioningArtifact,
	})
}

// Login submits a username/password pair. Without a session_id it starts a
// new login; with one it submits the confirming re-entry.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if !validRequest(w, req) {
		return
	}

	out, err := h.verification.SubmitCredentials(h.withClientIP(r), req.SessionID, models.Credential{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, newLoginResponse(out))
}

// LoginTOTP submits the second factor of a session.
func (h *AuthHandler) LoginTOTP(w http.ResponseWriter, r *http.Request) {
	var req TOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.TOTP = strings.TrimSpace(req.TOTP)
	if !validRequest(w, req) {
		return
	}

	out, err := h.verification.SubmitSecondFactor(h.withClientIP(r), req.SessionID, req.TOTP)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, newLoginResponse(out))
}

// ResetLogin discards a login session.
func (h *AuthHandler) ResetLogin(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validRequest(w, req) {
		return
	}

	h.verification.Reset(req.SessionID)
	pkghttp.WriteJSON(w, http.StatusOK, pkghttp.Success())
}

// Me returns the username of the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MeResponse{
		Result:   pkghttp.Success(),
		Username: claims.Username,
	})
}

func (h *AuthHandler) withClientIP(r *http.Request) context.Context {
	return services.WithClientIP(r.Context(), h.proxies.ClientIP(r))
}
