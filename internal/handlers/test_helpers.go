package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/internal/services"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
	"github.com/BradenHooton/passguard/pkg/password"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, userID, username string) *http.Request {
	claims := &models.TokenClaims{
		UserID:   userID,
		Username: username,
		Type:     "access",
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.OK)
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockVerificationService implements VerificationServiceInterface for testing
type MockVerificationService struct {
	SubmitCredentialsFunc  func(ctx context.Context, sessionID string, cred models.Credential) (*models.LoginOutcome, error)
	SubmitSecondFactorFunc func(ctx context.Context, sessionID, code string) (*models.LoginOutcome, error)
	ResetFunc              func(sessionID string)
}

func (m *MockVerificationService) SubmitCredentials(ctx context.Context, sessionID string, cred models.Credential) (*models.LoginOutcome, error) {
	if m.SubmitCredentialsFunc != nil {
		return m.SubmitCredentialsFunc(ctx, sessionID, cred)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockVerificationService) SubmitSecondFactor(ctx context.Context, sessionID, code string) (*models.LoginOutcome, error) {
	if m.SubmitSecondFactorFunc != nil {
		return m.SubmitSecondFactorFunc(ctx, sessionID, code)
	}
	return nil, models.ErrInvalidSecondFactor
}

func (m *MockVerificationService) Reset(sessionID string) {
	if m.ResetFunc != nil {
		m.ResetFunc(sessionID)
	}
}

// MockEnrollmentService implements EnrollmentServiceInterface for testing
type MockEnrollmentService struct {
	RegisterFunc func(ctx context.Context, username, password string) (*models.Enrollment, error)
}

func (m *MockEnrollmentService) Register(ctx context.Context, username, pw string) (*models.Enrollment, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, pw)
	}
	return &models.Enrollment{UserID: "u1", Username: username}, nil
}

func (m *MockEnrollmentService) Policy() password.Policy {
	return password.DefaultPolicy()
}

// MockRecordService implements RecordServiceInterface for testing
type MockRecordService struct {
	CreateFunc func(ctx context.Context, userID string, in services.NewRecord) (*models.Record, error)
	ListFunc   func(ctx context.Context, userID string) ([]*models.Record, error)
	UpdateFunc func(ctx context.Context, userID, id string, patch services.RecordPatch) (*models.Record, error)
	DeleteFunc func(ctx context.Context, userID, id string) error
}

func (m *MockRecordService) Create(ctx context.Context, userID string, in services.NewRecord) (*models.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, in)
	}
	return &models.Record{ID: "rec-1", UserID: userID, Site: in.Site, Login: in.Login, Password: in.Password}, nil
}

func (m *MockRecordService) List(ctx context.Context, userID string) ([]*models.Record, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []*models.Record{}, nil
}

func (m *MockRecordService) Update(ctx context.Context, userID, id string, patch services.RecordPatch) (*models.Record, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, patch)
	}
	return &models.Record{ID: id, UserID: userID}, nil
}

func (m *MockRecordService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}
