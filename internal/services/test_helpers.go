package services

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/BradenHooton/passguard/internal/auth"
	"github.com/BradenHooton/passguard/internal/models"
)

// MockCredentialChecker implements CredentialChecker for testing
type MockCredentialChecker struct {
	CheckCredentialsFunc func(ctx context.Context, username, password string) (*models.Identity, error)
	Calls                atomic.Int32
}

func (m *MockCredentialChecker) CheckCredentials(ctx context.Context, username, password string) (*models.Identity, error) {
	m.Calls.Add(1)
	if m.CheckCredentialsFunc != nil {
		return m.CheckCredentialsFunc(ctx, username, password)
	}
	return nil, models.ErrInvalidCredentials
}

// MockSecondFactorVerifier implements SecondFactorVerifier for testing
type MockSecondFactorVerifier struct {
	VerifySecondFactorFunc func(ctx context.Context, identity *models.Identity, code string) (*models.Identity, error)
	Calls                  atomic.Int32
}

func (m *MockSecondFactorVerifier) VerifySecondFactor(ctx context.Context, identity *models.Identity, code string) (*models.Identity, error) {
	m.Calls.Add(1)
	if m.VerifySecondFactorFunc != nil {
		return m.VerifySecondFactorFunc(ctx, identity, code)
	}
	return nil, models.ErrInvalidSecondFactor
}

// MockSessionIssuer implements SessionIssuer for testing
type MockSessionIssuer struct {
	IssueTokenFunc func(ctx context.Context, identity *models.Identity) (string, error)
}

func (m *MockSessionIssuer) IssueToken(ctx context.Context, identity *models.Identity) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(ctx, identity)
	}
	return "token-" + identity.UserID, nil
}

// MockIdentityStore implements IdentityStore for testing
type MockIdentityStore struct {
	CreateAccountFunc func(ctx context.Context, username, password string) (*models.Enrollment, error)
	Calls             atomic.Int32
}

func (m *MockIdentityStore) CreateAccount(ctx context.Context, username, password string) (*models.Enrollment, error) {
	m.Calls.Add(1)
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, username, password)
	}
	return &models.Enrollment{UserID: "user-1", Username: username}, nil
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

// MockTOTPProvider implements TOTPProvider for testing
type MockTOTPProvider struct {
	ProvisionFunc func(userID, accountName string) (*auth.TOTPEnrollment, error)
	ValidateFunc  func(userID string, secretEncrypted []byte, code string) (bool, error)
}

func (m *MockTOTPProvider) Provision(userID, accountName string) (*auth.TOTPEnrollment, error) {
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(userID, accountName)
	}
	return &auth.TOTPEnrollment{
		Secret:          "JBSWY3DPEHPK3PXP",
		SecretEncrypted: []byte("sealed:" + userID),
		URL:             "otpauth://totp/test:" + accountName,
		QRCode:          "data:image/png;base64,AAAA",
	}, nil
}

func (m *MockTOTPProvider) Validate(userID string, secretEncrypted []byte, code string) (bool, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(userID, secretEncrypted, code)
	}
	return false, nil
}

// MockRecordRepository is an in-memory RecordRepository for testing
type MockRecordRepository struct {
	CreateFunc     func(ctx context.Context, rec *models.Record) (*models.Record, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]*models.Record, error)
	GetByIDFunc    func(ctx context.Context, userID, id string) (*models.Record, error)
	UpdateFunc     func(ctx context.Context, rec *models.Record) (*models.Record, error)
	DeleteFunc     func(ctx context.Context, userID, id string) error
}

func (m *MockRecordRepository) Create(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return rec, nil
}

func (m *MockRecordRepository) ListByUser(ctx context.Context, userID string) ([]*models.Record, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Record{}, nil
}

func (m *MockRecordRepository) GetByID(ctx context.Context, userID, id string) (*models.Record, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockRecordRepository) Update(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec)
	}
	return rec, nil
}

func (m *MockRecordRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestIdentity returns an identity for username with a derived user id.
func NewTestIdentity(username string, totpEnrolled bool) *models.Identity {
	return &models.Identity{
		UserID:       "id-" + username,
		Username:     username,
		TOTPEnrolled: totpEnrolled,
	}
}

// NewAcceptingChecker accepts exactly the given pair.
func NewAcceptingChecker(username, password string, totpEnrolled bool) *MockCredentialChecker {
	return &MockCredentialChecker{
		CheckCredentialsFunc: func(ctx context.Context, u, p string) (*models.Identity, error) {
			if u == username && p == password {
				return NewTestIdentity(username, totpEnrolled), nil
			}
			return nil, models.ErrInvalidCredentials
		},
	}
}
