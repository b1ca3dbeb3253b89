package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/pkg/crypto"
)

func newTestSealer(t *testing.T) *crypto.Sealer {
	t.Helper()
	sealer, err := crypto.NewSealer(bytes.Repeat([]byte{7}, crypto.KeySize))
	require.NoError(t, err)
	return sealer
}

// memoryRecords backs a MockRecordRepository with a map.
func memoryRecords() (*MockRecordRepository, map[string]*models.Record) {
	store := map[string]*models.Record{}
	repo := &MockRecordRepository{
		CreateFunc: func(ctx context.Context, rec *models.Record) (*models.Record, error) {
			cp := *rec
			store[rec.ID] = &cp
			return rec, nil
		},
		ListByUserFunc: func(ctx context.Context, userID string) ([]*models.Record, error) {
			var out []*models.Record
			for _, rec := range store {
				if rec.UserID == userID {
					cp := *rec
					cp.Password = ""
					out = append(out, &cp)
				}
			}
			return out, nil
		},
		GetByIDFunc: func(ctx context.Context, userID, id string) (*models.Record, error) {
			rec, ok := store[id]
			if !ok || rec.UserID != userID {
				return nil, models.ErrNotFound
			}
			cp := *rec
			cp.Password = ""
			return &cp, nil
		},
		UpdateFunc: func(ctx context.Context, rec *models.Record) (*models.Record, error) {
			if cur, ok := store[rec.ID]; !ok || cur.UserID != rec.UserID {
				return nil, models.ErrNotFound
			}
			cp := *rec
			store[rec.ID] = &cp
			return rec, nil
		},
		DeleteFunc: func(ctx context.Context, userID, id string) error {
			rec, ok := store[id]
			if !ok || rec.UserID != userID {
				return models.ErrNotFound
			}
			delete(store, id)
			return nil
		},
	}
	return repo, store
}

func TestRecordService_CreateAndList(t *testing.T) {
	repo, store := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "  example.com ", Login: " alice ", Password: "hunter2", Notes: "n"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", created.Site)
	assert.Equal(t, "alice", created.Login)
	assert.Equal(t, "hunter2", created.Password)

	stored := store[created.ID]
	require.NotNil(t, stored)
	assert.NotContains(t, string(stored.PasswordEncrypted), "hunter2")

	records, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hunter2", records[0].Password)

	others, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestRecordService_Create_MissingField(t *testing.T) {
	svc := NewRecordService(&MockRecordRepository{}, newTestSealer(t), NewTestLogger())

	tests := []NewRecord{
		{Site: "", Login: "alice", Password: "x"},
		{Site: "   ", Login: "alice", Password: "x"},
		{Site: "example.com", Login: "", Password: "x"},
		{Site: "example.com", Login: "alice", Password: ""},
	}
	for _, in := range tests {
		_, err := svc.Create(context.Background(), "u1", in)
		assert.ErrorIs(t, err, models.ErrMissingField)
	}
}

func TestRecordService_Update_Partial(t *testing.T) {
	repo, _ := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "example.com", Login: "alice", Password: "hunter2", Notes: "old"})
	require.NoError(t, err)

	notes := "new notes"
	updated, err := svc.Update(ctx, "u1", created.ID, RecordPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "example.com", updated.Site)
	assert.Equal(t, "hunter2", updated.Password)
	assert.Equal(t, "new notes", updated.Notes)

	pw := "correct horse"
	_, err = svc.Update(ctx, "u1", created.ID, RecordPatch{Password: &pw})
	require.NoError(t, err)

	records, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "correct horse", records[0].Password)
	assert.Equal(t, "new notes", records[0].Notes)
}

func TestRecordService_Update_NotOwned(t *testing.T) {
	repo, _ := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "example.com", Login: "alice", Password: "hunter2"})
	require.NoError(t, err)

	site := "evil.com"
	_, err = svc.Update(ctx, "u2", created.ID, RecordPatch{Site: &site})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Update(ctx, "u1", "not-a-uuid", RecordPatch{Site: &site})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordService_Update_ClearingRequiredField(t *testing.T) {
	repo, _ := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "example.com", Login: "alice", Password: "hunter2"})
	require.NoError(t, err)

	blank := "  "
	_, err = svc.Update(ctx, "u1", created.ID, RecordPatch{Login: &blank})
	assert.ErrorIs(t, err, models.ErrMissingField)
}

func TestRecordService_Delete(t *testing.T) {
	repo, store := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "example.com", Login: "alice", Password: "hunter2"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", created.ID), models.ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, "u1", created.ID))
	assert.Empty(t, store)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", created.ID), models.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", uuid.NewString()), models.ErrNotFound)
}

func TestRecordService_SealedPasswordBoundToOwner(t *testing.T) {
	repo, store := memoryRecords()
	svc := NewRecordService(repo, newTestSealer(t), NewTestLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", NewRecord{Site: "example.com", Login: "alice", Password: "hunter2"})
	require.NoError(t, err)

	// Moving the ciphertext to another owner must not decrypt.
	store[created.ID].UserID = "u2"
	_, err = svc.List(ctx, "u2")
	assert.Error(t, err)
}
