package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/passguard/internal/handlers"
	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/internal/services"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

func newRecordHandler(svc handlers.RecordServiceInterface) *handlers.RecordHandler {
	return handlers.NewRecordHandler(svc, services.NewTestLogger())
}

func TestRecords_List(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := &handlers.MockRecordService{
		ListFunc: func(ctx context.Context, userID string) ([]*models.Record, error) {
			assert.Equal(t, "u1", userID)
			return []*models.Record{
				{ID: "r2", Site: "b.com", Login: "alice", Password: "pw2", CreatedAt: created.Add(time.Hour)},
				{ID: "r1", Site: "a.com", Login: "alice", Password: "pw1", Notes: "n", CreatedAt: created},
			}, nil
		},
	}
	handler := newRecordHandler(svc)

	req := handlers.WithAuthContext(httptest.NewRequest("GET", "/passwords", nil), "u1", "alice")
	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp handlers.RecordListResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "r2", resp.Records[0].ID)
	assert.Equal(t, "pw1", resp.Records[1].Password)
	assert.Equal(t, created, resp.Records[1].CreatedAt)
}

func TestRecords_RequireAuth(t *testing.T) {
	handler := newRecordHandler(&handlers.MockRecordService{})

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/passwords", nil))
	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, pkghttp.CodeUnauthorized)

	w = httptest.NewRecorder()
	handler.Delete(w, handlers.WithURLParam(httptest.NewRequest("DELETE", "/passwords/x", nil), "id", "x"))
	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, pkghttp.CodeUnauthorized)
}

func TestRecords_Create(t *testing.T) {
	svc := &handlers.MockRecordService{
		CreateFunc: func(ctx context.Context, userID string, in services.NewRecord) (*models.Record, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "example.com", in.Site)
			return &models.Record{ID: "rec-9"}, nil
		},
	}
	handler := newRecordHandler(svc)

	req := handlers.NewTestRequest(t, "POST", "/passwords", handlers.CreateRecordRequest{
		Site: "example.com", Login: "alice", Password: "hunter2",
	})
	w := httptest.NewRecorder()
	handler.Create(w, handlers.WithAuthContext(req, "u1", "alice"))

	var resp handlers.RecordCreatedResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, "rec-9", resp.ID)
}

func TestRecords_Create_MissingField(t *testing.T) {
	svc := &handlers.MockRecordService{
		CreateFunc: func(ctx context.Context, userID string, in services.NewRecord) (*models.Record, error) {
			return nil, models.ErrMissingField
		},
	}
	handler := newRecordHandler(svc)

	req := handlers.NewTestRequest(t, "POST", "/passwords", handlers.CreateRecordRequest{Site: "example.com"})
	w := httptest.NewRecorder()
	handler.Create(w, handlers.WithAuthContext(req, "u1", "alice"))

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, pkghttp.CodeMissingField)
}

func TestRecords_Update_Partial(t *testing.T) {
	svc := &handlers.MockRecordService{
		UpdateFunc: func(ctx context.Context, userID, id string, patch services.RecordPatch) (*models.Record, error) {
			assert.Equal(t, "rec-1", id)
			assert.Nil(t, patch.Site)
			assert.Nil(t, patch.Password)
			require.NotNil(t, patch.Notes)
			assert.Equal(t, "rotated", *patch.Notes)
			return &models.Record{ID: id}, nil
		},
	}
	handler := newRecordHandler(svc)

	req := handlers.NewTestRequest(t, "PUT", "/passwords/rec-1", map[string]string{"notes": "rotated"})
	req = handlers.WithURLParam(handlers.WithAuthContext(req, "u1", "alice"), "id", "rec-1")
	w := httptest.NewRecorder()
	handler.Update(w, req)

	var resp pkghttp.Result
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.OK)
}

func TestRecords_Delete_NotFound(t *testing.T) {
	svc := &handlers.MockRecordService{
		DeleteFunc: func(ctx context.Context, userID, id string) error {
			return models.ErrNotFound
		},
	}
	handler := newRecordHandler(svc)

	req := httptest.NewRequest("DELETE", "/passwords/rec-1", nil)
	req = handlers.WithURLParam(handlers.WithAuthContext(req, "u2", "bob"), "id", "rec-1")
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusNotFound, pkghttp.CodeNotFound)
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(ctx context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(fakeHealth{})(w, httptest.NewRequest("GET", "/health", nil))
	var resp handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "up", resp.Database)

	w = httptest.NewRecorder()
	handlers.Health(fakeHealth{err: assert.AnError})(w, httptest.NewRequest("GET", "/health", nil))
	handlers.AssertJSONResponse(t, w, http.StatusServiceUnavailable, &resp)
	assert.Equal(t, "down", resp.Database)
	assert.False(t, resp.OK)

	w = httptest.NewRecorder()
	handlers.Health(nil)(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
