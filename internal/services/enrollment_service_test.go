package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/passguard/internal/models"
	"github.com/BradenHooton/passguard/pkg/password"
)

func TestEnrollmentService_Register_Success(t *testing.T) {
	store := &MockIdentityStore{
		CreateAccountFunc: func(ctx context.Context, username, pw string) (*models.Enrollment, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "Str0ng!Pass", pw)
			return &models.Enrollment{UserID: "u1", Username: username, ProvisioningArtifact: "data:image/png;base64,AAAA"}, nil
		},
	}
	svc := NewEnrollmentService(store, password.DefaultPolicy(), time.Second, NewTestLogger())

	enrollment, err := svc.Register(context.Background(), "alice", "Str0ng!Pass")

	require.NoError(t, err)
	assert.Equal(t, "u1", enrollment.UserID)
	assert.NotEmpty(t, enrollment.ProvisioningArtifact)
}

func TestEnrollmentService_Register_WeakPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		missing  []password.Requirement
	}{
		{
			name:     "empty",
			password: "",
			missing: []password.Requirement{
				password.RequireLength, password.RequireUppercase, password.RequireLowercase,
				password.RequireDigit, password.RequireSymbol,
			},
		},
		{
			name:     "no symbol",
			password: "Abcdefg1",
			missing:  []password.Requirement{password.RequireSymbol},
		},
		{
			name:     "short",
			password: "Ab1!",
			missing:  []password.Requirement{password.RequireLength},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockIdentityStore{}
			svc := NewEnrollmentService(store, password.DefaultPolicy(), time.Second, NewTestLogger())

			_, err := svc.Register(context.Background(), "alice", tt.password)

			assert.ErrorIs(t, err, models.ErrWeakPassword)
			var weak *models.WeakPasswordError
			require.ErrorAs(t, err, &weak)
			assert.Equal(t, tt.missing, weak.Missing)
			assert.Equal(t, int32(0), store.Calls.Load())
		})
	}
}

func TestEnrollmentService_Register_MissingUsername(t *testing.T) {
	store := &MockIdentityStore{}
	svc := NewEnrollmentService(store, password.DefaultPolicy(), time.Second, NewTestLogger())

	_, err := svc.Register(context.Background(), "", "Str0ng!Pass")

	assert.ErrorIs(t, err, models.ErrMissingField)
	assert.Equal(t, int32(0), store.Calls.Load())
}

func TestEnrollmentService_Register_Conflict(t *testing.T) {
	store := &MockIdentityStore{
		CreateAccountFunc: func(ctx context.Context, username, pw string) (*models.Enrollment, error) {
			return nil, models.ErrConflict
		},
	}
	svc := NewEnrollmentService(store, password.DefaultPolicy(), time.Second, NewTestLogger())

	_, err := svc.Register(context.Background(), "alice", "Str0ng!Pass")

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.False(t, models.IsRetryable(err))
}

func TestEnrollmentService_Register_BackendFailure(t *testing.T) {
	store := &MockIdentityStore{
		CreateAccountFunc: func(ctx context.Context, username, pw string) (*models.Enrollment, error) {
			return nil, errors.New("disk full")
		},
	}
	svc := NewEnrollmentService(store, password.DefaultPolicy(), time.Second, NewTestLogger())

	_, err := svc.Register(context.Background(), "alice", "Str0ng!Pass")

	assert.ErrorIs(t, err, models.ErrBackendUnavailable)
}

func TestEnrollmentService_Register_Timeout(t *testing.T) {
	store := &MockIdentityStore{
		CreateAccountFunc: func(ctx context.Context, username, pw string) (*models.Enrollment, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	svc := NewEnrollmentService(store, password.DefaultPolicy(), 10*time.Millisecond, NewTestLogger())

	_, err := svc.Register(context.Background(), "alice", "Str0ng!Pass")

	assert.ErrorIs(t, err, models.ErrTimeout)
}

func TestEnrollmentService_StrictPolicy(t *testing.T) {
	svc := NewEnrollmentService(&MockIdentityStore{}, password.NewPolicy(password.StrictMinLength), time.Second, NewTestLogger())

	_, err := svc.Register(context.Background(), "alice", "Str0ng!Pass")

	var weak *models.WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.Equal(t, []password.Requirement{password.RequireLength}, weak.Missing)
}

func TestEnrollmentService_Register_PasswordTooLong(t *testing.T) {
	var created bool
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = true
			return user, nil
		},
	}
	accounts := NewAccountService(repo, &MockTOTPProvider{}, nil, NewTestLogger())
	svc := NewEnrollmentService(accounts, password.DefaultPolicy(), 30*time.Second, NewTestLogger())

	long := "Str0ng!Pass" + strings.Repeat("x", 89)
	_, err := svc.Register(context.Background(), "alice", long)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	assert.NotErrorIs(t, err, models.ErrBackendUnavailable)
	assert.False(t, created)

	_, err = svc.Register(context.Background(), "alice", "Str0ng!Pass"+strings.Repeat("x", 61))
	require.NoError(t, err)
	assert.True(t, created)
}
