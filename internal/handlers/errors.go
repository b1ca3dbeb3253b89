package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/passguard/internal/models"
	pkghttp "github.com/BradenHooton/passguard/pkg/http"
)

// AttemptDetails accompanies invalid_credentials and account_locked errors
// raised by a confirmation mismatch.
type AttemptDetails struct {
	Attempts          int          `json:"attempts"`
	AttemptsRemaining int          `json:"attempts_remaining"`
	Stage             models.Stage `json:"stage"`
}

// WeakPasswordDetails lists the requirements a password failed.
type WeakPasswordDetails struct {
	MissingRequirements []string `json:"missing_requirements"`
	Hints               []string `json:"hints"`
}

// writeServiceError maps a domain error to its response. Unknown errors are
// logged and reported as internal errors without their text.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, minLength int) {
	var attemptErr *models.AttemptError
	var weakErr *models.WeakPasswordError

	switch {
	case errors.As(err, &attemptErr):
		details := AttemptDetails{
			Attempts:          attemptErr.Attempts,
			AttemptsRemaining: attemptErr.Remaining(),
			Stage:             models.StageAwaitingConfirmation,
		}
		if attemptErr.Locked() {
			details.Stage = models.StageLocked
			pkghttp.WriteErrorWithDetails(w, http.StatusLocked, pkghttp.CodeAccountLocked,
				"Too many failed attempts. Please log in again.", details)
			return
		}
		pkghttp.WriteErrorWithDetails(w, http.StatusUnauthorized, pkghttp.CodeInvalidCredentials,
			"Invalid username or password", details)

	case errors.As(err, &weakErr):
		details := WeakPasswordDetails{
			MissingRequirements: make([]string, 0, len(weakErr.Missing)),
			Hints:               make([]string, 0, len(weakErr.Missing)),
		}
		for _, req := range weakErr.Missing {
			details.MissingRequirements = append(details.MissingRequirements, string(req))
			details.Hints = append(details.Hints, req.Describe(minLength))
		}
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, pkghttp.CodeWeakPassword,
			"Password does not meet the policy", details)

	case errors.Is(err, models.ErrWeakPassword):
		pkghttp.WriteError(w, http.StatusBadRequest, pkghttp.CodeWeakPassword, "Password does not meet the policy")
	case errors.Is(err, models.ErrMissingField):
		pkghttp.WriteMissingField(w, "A required field is empty")
	case errors.Is(err, models.ErrInvalidParameter):
		pkghttp.WriteInvalidParameter(w, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteError(w, http.StatusUnauthorized, pkghttp.CodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, models.ErrInvalidSecondFactor):
		pkghttp.WriteError(w, http.StatusUnauthorized, pkghttp.CodeInvalidSecondFactor, "Invalid authentication code")
	case errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteError(w, http.StatusLocked, pkghttp.CodeAccountLocked, "Too many failed attempts. Please log in again.")
	case errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteError(w, http.StatusUnauthorized, pkghttp.CodeSessionExpired, "Session expired. Please log in again.")
	case errors.Is(err, models.ErrUnexpectedStage):
		pkghttp.WriteError(w, http.StatusConflict, pkghttp.CodeUnexpectedStage, err.Error())
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "User already exists")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrGeneratorUnavailable):
		pkghttp.WriteServiceUnavailable(w, pkghttp.CodeGeneratorUnavailable, "Password generator unavailable")
	case errors.Is(err, models.ErrTimeout):
		pkghttp.WriteError(w, http.StatusGatewayTimeout, pkghttp.CodeTimeout, "Identity backend timed out. Please retry.")
	case errors.Is(err, models.ErrBackendUnavailable):
		pkghttp.WriteServiceUnavailable(w, pkghttp.CodeBackendUnavailable, "Identity backend unavailable. Please retry.")
	default:
		logger.Error("unhandled service error", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
