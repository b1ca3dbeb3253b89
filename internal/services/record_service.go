package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/pkg/logger"
)

// RecordRepository persists sealed site credentials.
type RecordRepository interface {
	Create(ctx context.Context, rec *models.Record) (*models.Record, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Record, error)
	GetByID(ctx context.Context, userID, id string) (*models.Record, error)
	Update(ctx context.Context, rec *models.Record) (*models.Record, error)
	Delete(ctx context.Context, userID, id string) error
}

// Sealer encrypts record passwords at rest.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(ciphertext, aad []byte) ([]byte, error)
}

// NewRecord is the input of RecordService.Create.
type NewRecord struct {
	Site     string
	Login    string
	Password string
	Notes    string
}

// RecordPatch holds the fields of an update. Nil fields are left unchanged.
type RecordPatch struct {
	Site     *string
	Login    *string
	Password *string
	Notes    *string
}

// RecordService manages the saved credentials of authenticated users.
type RecordService struct {
	repo   RecordRepository
	sealer Sealer
	audit  *logger.AuditLogger
	logger *slog.Logger
}

func NewRecordService(repo RecordRepository, sealer Sealer, log *slog.Logger) *RecordService {
	return &RecordService{
		repo:   repo,
		sealer: sealer,
		audit:  logger.NewAuditLogger(log),
		logger: log,
	}
}

// recordAAD binds a sealed password to its owner and record.
func recordAAD(userID, recordID string) []byte {
	return []byte(userID + "/" + recordID)
}

// Create stores a record for userID. Site, login and password are required;
// site and login are trimmed.
func (s *RecordService) Create(ctx context.Context, userID string, in NewRecord) (*models.Record, error) {
	site := strings.TrimSpace(in.Site)
	login := strings.TrimSpace(in.Login)
	if site == "" || login == "" || in.Password == "" {
		return nil, models.ErrMissingField
	}

	rec := &models.Record{
		ID:       uuid.NewString(),
		UserID:   userID,
		Site:     site,
		Login:    login,
		Password: in.Password,
		Notes:    in.Notes,
	}
	if err := s.seal(rec); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		s.logger.Error("failed to create record", slog.String("user_id", userID), slog.Any("error", err))
		return nil, err
	}
	created.Password = in.Password

	s.audit.LogRecordAction(ctx, logger.EventRecordCreated, userID, created.ID)
	return created, nil
}

// List returns the user's records, newest first, with passwords decrypted.
func (s *RecordService) List(ctx context.Context, userID string) ([]*models.Record, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list records", slog.String("user_id", userID), slog.Any("error", err))
		return nil, err
	}
	for _, rec := range records {
		if err := s.open(rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Update applies patch to a record owned by userID.
func (s *RecordService) Update(ctx context.Context, userID, id string, patch RecordPatch) (*models.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.open(rec); err != nil {
		return nil, err
	}

	if patch.Site != nil {
		rec.Site = strings.TrimSpace(*patch.Site)
	}
	if patch.Login != nil {
		rec.Login = strings.TrimSpace(*patch.Login)
	}
	if patch.Password != nil {
		rec.Password = *patch.Password
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if rec.Site == "" || rec.Login == "" || rec.Password == "" {
		return nil, models.ErrMissingField
	}

	if err := s.seal(rec); err != nil {
		return nil, err
	}
	plaintext := rec.Password

	updated, err := s.repo.Update(ctx, rec)
	if err != nil {
		return nil, err
	}
	updated.Password = plaintext

	s.audit.LogRecordAction(ctx, logger.EventRecordUpdated, userID, id)
	return updated, nil
}

// Delete removes a record owned by userID.
func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrNotFound
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to delete record", slog.String("user_id", userID), slog.Any("error", err))
		}
		return err
	}
	s.audit.LogRecordAction(ctx, logger.EventRecordDeleted, userID, id)
	return nil
}

func (s *RecordService) seal(rec *models.Record) error {
	sealed, err := s.sealer.Seal([]byte(rec.Password), recordAAD(rec.UserID, rec.ID))
	if err != nil {
		return fmt.Errorf("failed to encrypt record password: %w", err)
	}
	rec.PasswordEncrypted = sealed
	return nil
}

func (s *RecordService) open(rec *models.Record) error {
	plain, err := s.sealer.Open(rec.PasswordEncrypted, recordAAD(rec.UserID, rec.ID))
	if err != nil {
		s.logger.Error("failed to decrypt record password",
			slog.String("record_id", rec.ID),
			slog.Any("error", err))
		return fmt.Errorf("failed to decrypt record password: %w", err)
	}
	rec.Password = string(plain)
	return nil
}
