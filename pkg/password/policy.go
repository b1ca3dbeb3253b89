package password

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Symbols is the punctuation set accepted for the symbol requirement.
const Symbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Minimum length thresholds in use across deployments.
const (
	DefaultMinLength = 8
	StrictMinLength  = 15
)

// Requirement identifies one predicate of the password policy.
type Requirement string

const (
	RequireLength    Requirement = "min_length"
	RequireUppercase Requirement = "uppercase"
	RequireLowercase Requirement = "lowercase"
	RequireDigit     Requirement = "digit"
	RequireSymbol    Requirement = "symbol"
)

// Strength is the bucketed classification of a score.
type Strength string

const (
	Weak   Strength = "Weak"
	Medium Strength = "Medium"
	Strong Strength = "Strong"
)

// MaxScore is the score of a password that satisfies every requirement.
const MaxScore = 5

// Assessment is the result of evaluating a password against a Policy.
type Assessment struct {
	Strength Strength      `json:"strength"`
	Score    int           `json:"score"`
	Missing  []Requirement `json:"missing_requirements"`
}

// Satisfied reports whether no requirement is missing.
func (a Assessment) Satisfied() bool {
	return len(a.Missing) == 0
}

// Policy holds the configurable thresholds of the evaluator.
type Policy struct {
	MinLength int
}

// DefaultPolicy returns the policy with an 8 character minimum.
func DefaultPolicy() Policy {
	return Policy{MinLength: DefaultMinLength}
}

// NewPolicy returns a policy with the given minimum length. Values below 1
// fall back to DefaultMinLength.
func NewPolicy(minLength int) Policy {
	if minLength < 1 {
		minLength = DefaultMinLength
	}
	return Policy{MinLength: minLength}
}

// Evaluate scores pw against the five requirements. It depends only on pw and
// the policy thresholds.
func (p Policy) Evaluate(pw string) Assessment {
	minLength := p.MinLength
	if minLength < 1 {
		minLength = DefaultMinLength
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(Symbols, r):
			hasSymbol = true
		}
	}

	checks := []struct {
		req Requirement
		ok  bool
	}{
		{RequireLength, utf8.RuneCountInString(pw) >= minLength},
		{RequireUppercase, hasUpper},
		{RequireLowercase, hasLower},
		{RequireDigit, hasDigit},
		{RequireSymbol, hasSymbol},
	}

	a := Assessment{Missing: []Requirement{}}
	for _, c := range checks {
		if c.ok {
			a.Score++
			continue
		}
		a.Missing = append(a.Missing, c.req)
	}
	a.Strength = strengthFor(a.Score)
	return a
}

func strengthFor(score int) Strength {
	switch {
	case score >= MaxScore:
		return Strong
	case score >= 3:
		return Medium
	default:
		return Weak
	}
}

// Describe returns a human readable hint for a missing requirement.
func (r Requirement) Describe(minLength int) string {
	switch r {
	case RequireLength:
		return "use at least " + strconv.Itoa(minLength) + " characters"
	case RequireUppercase:
		return "add an uppercase letter"
	case RequireLowercase:
		return "add a lowercase letter"
	case RequireDigit:
		return "add a digit"
	case RequireSymbol:
		return "add a symbol such as ! @ # $"
	default:
		return string(r)
	}
}
