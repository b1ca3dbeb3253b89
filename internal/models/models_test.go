package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/BradenHooton/passguard/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptError(t *testing.T) {
	err := error(&AttemptError{Attempts: 1, Max: 3})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrAccountLocked)

	var ae *AttemptError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 2, ae.Remaining())
	assert.False(t, ae.Locked())

	locked := error(&AttemptError{Attempts: 3, Max: 3})
	assert.ErrorIs(t, locked, ErrAccountLocked)
	assert.NotErrorIs(t, locked, ErrInvalidCredentials)
	require.True(t, errors.As(locked, &ae))
	assert.Equal(t, 0, ae.Remaining())
}

func TestWeakPasswordError(t *testing.T) {
	err := error(&WeakPasswordError{Missing: []password.Requirement{password.RequireDigit}})
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Contains(t, err.Error(), "digit")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrBackendUnavailable))
	assert.False(t, IsRetryable(ErrInvalidCredentials))
	assert.False(t, IsRetryable(&AttemptError{Attempts: 3, Max: 3}))
}

func TestGenerationErrorsShareIdentity(t *testing.T) {
	assert.ErrorIs(t, password.ErrInvalidParameter, ErrInvalidParameter)
	assert.ErrorIs(t, password.ErrGeneratorUnavailable, ErrGeneratorUnavailable)
}

func TestStage(t *testing.T) {
	tests := []struct {
		stage Stage
		name  string
	}{
		{StageAwaitingFirstAttempt, "awaiting_first_attempt"},
		{StageAwaitingConfirmation, "awaiting_confirmation"},
		{StageAwaitingSecondFactor, "awaiting_second_factor"},
		{StageAuthenticated, "authenticated"},
		{StageLocked, "locked"},
		{Stage(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.stage.String())
	}

	b, err := json.Marshal(map[string]Stage{"stage": StageLocked})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"locked"}`, string(b))
}

func TestCredentialEmpty(t *testing.T) {
	assert.True(t, Credential{}.Empty())
	assert.True(t, Credential{Username: "alice"}.Empty())
	assert.True(t, Credential{Password: "x"}.Empty())
	assert.False(t, Credential{Username: "alice", Password: "x"}.Empty())
}

func TestUserTOTPEnrolled(t *testing.T) {
	assert.False(t, (&User{}).TOTPEnrolled())
	assert.True(t, (&User{TOTPSecretEncrypted: []byte{1}}).TOTPEnrolled())
}

func TestStage_TextRoundTrip(t *testing.T) {
	var got Stage
	require.NoError(t, json.Unmarshal([]byte(`"awaiting_second_factor"`), &got))
	assert.Equal(t, StageAwaitingSecondFactor, got)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &got))
}
