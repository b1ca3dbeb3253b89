package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	pkghttp "github.com/BradenHooton/passguard/pkg/http"
	"github.com/BradenHooton/passguard/pkg/password"
)

// PasswordGenerator is the generation engine behind the /api endpoints.
type PasswordGenerator interface {
	Random(length int) (string, error)
	Diceware(count int, sep password.Separator) (string, password.Separator, error)
	Improve(pw string) (string, error)
	FromPhrase(phrase string) (string, error)
	Policy() password.Policy
}

// GeneratorHandler serves password generation and evaluation. None of its
// endpoints need authentication or a backend.
type GeneratorHandler struct {
	generator PasswordGenerator
	logger    *slog.Logger
}

func NewGeneratorHandler(generator PasswordGenerator, logger *slog.Logger) *GeneratorHandler {
	return &GeneratorHandler{generator: generator, logger: logger}
}

// ============================================================================
// DTOs
// ============================================================================

type PasswordRequest struct {
	Password string `json:"password" validate:"required,max=1024"`
}

// EvaluateRequest allows an empty password, which fails every requirement.
type EvaluateRequest struct {
	Password string `json:"password" validate:"max=1024"`
}

type PhraseRequest struct {
	Phrase string `json:"phrase" validate:"required,max=1024"`
}

type GenerateResponse struct {
	pkghttp.Result
	Password string `json:"password"`
}

type DicewareResponse struct {
	pkghttp.Result
	Password      string             `json:"password"`
	SeparatorUsed password.Separator `json:"separator_used"`
}

type ImproveResponse struct {
	pkghttp.Result
	ImprovedPassword string `json:"improved_password"`
}

type EvaluateResponse struct {
	pkghttp.Result
	password.Assessment
	Hints []string `json:"hints"`
}

type TestPasswordResponse struct {
	pkghttp.Result
	password.Report
}

// ============================================================================
// Handlers
// ============================================================================

// Generate returns a random password. Query: length (default 24).
func (h *GeneratorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	length, ok := intQuery(w, r, "length", password.DefaultRandomLength)
	if !ok {
		return
	}

	pw, err := h.generator.Random(length)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, GenerateResponse{Result: pkghttp.Success(), Password: pw})
}

// GenerateDiceware returns a passphrase. Query: count (default 5) and sep
// (space, dash, underscore, slash or random).
func (h *GeneratorHandler) GenerateDiceware(w http.ResponseWriter, r *http.Request) {
	count, ok := intQuery(w, r, "count", password.DefaultWordCount)
	if !ok {
		return
	}
	sep, err := password.ParseSeparator(r.URL.Query().Get("sep"))
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pw, used, err := h.generator.Diceware(count, sep)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DicewareResponse{
		Result:        pkghttp.Success(),
		Password:      pw,
		SeparatorUsed: used,
	})
}

// ImprovePassword returns pw rewritten to satisfy every policy requirement.
func (h *GeneratorHandler) ImprovePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	improved, err := h.generator.Improve(req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ImproveResponse{Result: pkghttp.Success(), ImprovedPassword: improved})
}

// GenerateFromPhrase builds a memorable password from a user phrase.
func (h *GeneratorHandler) GenerateFromPhrase(w http.ResponseWriter, r *http.Request) {
	var req PhraseRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	pw, err := h.generator.FromPhrase(req.Phrase)
	if err != nil {
		writeServiceError(w, h.logger, err, 0)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, GenerateResponse{Result: pkghttp.Success(), Password: pw})
}

// EvaluatePassword scores a password against the configured policy.
func (h *GeneratorHandler) EvaluatePassword(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	policy := h.generator.Policy()
	assessment := policy.Evaluate(req.Password)
	hints := make([]string, 0, len(assessment.Missing))
	for _, m := range assessment.Missing {
		hints = append(hints, m.Describe(policy.MinLength))
	}

	pkghttp.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Result:     pkghttp.Success(),
		Assessment: assessment,
		Hints:      hints,
	})
}

// TestPassword returns the detailed strength report of a password.
func (h *GeneratorHandler) TestPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decodeJSON(w, r, &req) || !validRequest(w, req) {
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TestPasswordResponse{
		Result: pkghttp.Success(),
		Report: password.Analyze(req.Password),
	})
}

// intQuery parses an optional integer query parameter. Range checks are left
// to the generator.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		pkghttp.WriteInvalidParameter(w, name+" must be an integer")
		return 0, false
	}
	return v, true
}
