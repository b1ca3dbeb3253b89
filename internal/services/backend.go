package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/passguard/internal/models"
)

// CredentialChecker verifies a username and password against the identity
// backend. A wrong pair returns models.ErrInvalidCredentials without saying
// which half was wrong.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, username, password string) (*models.Identity, error)
}

// SecondFactorVerifier validates a TOTP code for an identity that already
// passed the credential check. A wrong code returns models.ErrInvalidSecondFactor.
type SecondFactorVerifier interface {
	VerifySecondFactor(ctx context.Context, identity *models.Identity, code string) (*models.Identity, error)
}

// SessionIssuer exchanges a verified identity for an access token.
type SessionIssuer interface {
	IssueToken(ctx context.Context, identity *models.Identity) (string, error)
}

// IdentityStore creates accounts and provisions their second factor.
type IdentityStore interface {
	CreateAccount(ctx context.Context, username, password string) (*models.Enrollment, error)
}

type backendResult[T any] struct {
	value T
	err   error
}

// callBackend runs fn with a deadline of timeout. It returns as soon as the
// deadline passes even if fn ignores its context; a late result is dropped.
func callBackend[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan backendResult[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- backendResult[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var zero T
			return zero, classifyBackendError(res.err)
		}
		return res.value, nil
	case <-ctx.Done():
		var zero T
		return zero, models.ErrTimeout
	}
}

// classifyBackendError keeps domain errors and folds everything else into
// the two retryable kinds.
func classifyBackendError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.Is(err, models.ErrTimeout):
		return models.ErrTimeout
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidSecondFactor),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrWeakPassword),
		errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidParameter),
		errors.Is(err, models.ErrBackendUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err)
	}
}
