package password

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"github.com/nbutton23/zxcvbn-go/match"
)

// StrengthLabels indexes report scores 0..4.
var StrengthLabels = [...]string{"Very Weak", "Weak", "Medium", "Strong", "Very Strong"}

// dicewareWordBits is log2(7776), the entropy of one word from a 5-dice list.
var dicewareWordBits = math.Log2(7776)

// wordRun finds the words of a passphrase. Runs shorter than three letters
// are not counted so that mixed-class passwords are not mistaken for phrases.
var wordRun = regexp.MustCompile(`\p{L}{3,}`)

// Report is a detailed strength analysis intended for display.
type Report struct {
	Strength    string   `json:"strength"`
	Score       int      `json:"score"`
	Entropy     float64  `json:"entropy"`
	Passphrase  bool     `json:"passphrase"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	CrackTime   string   `json:"crack_time"`
}

// Analyze estimates the strength of pw with zxcvbn. Crack times assume an
// offline attack on a slow hash at 1e4 guesses per second. Inputs with three
// or more words are rescored as diceware passphrases.
func Analyze(pw string) Report {
	r := Report{Warnings: []string{}, Suggestions: []string{}}
	result := zxcvbn.PasswordStrength(pw, nil)
	words := len(wordRun.FindAllString(pw, -1))

	if words >= 3 {
		r.Passphrase = true
		r.Entropy = round1(float64(words) * dicewareWordBits)
		r.Score = passphraseScore(r.Entropy)
		r.CrackTime = fmt.Sprintf("%.1f bits of entropy", r.Entropy)
	} else {
		r.Entropy = round1(result.Entropy)
		r.Score = clampScore(result.Score)
		r.CrackTime = result.CrackTimeDisplay
	}

	for _, m := range result.MatchSequence {
		if w := warningFor(m); w != "" {
			r.Warnings = appendUnique(r.Warnings, w)
		}
	}
	if words > 8 {
		r.Warnings = append(r.Warnings, "Overly long passphrases may be hard to remember.")
	}

	if !r.Passphrase && r.Score <= 2 {
		r.Suggestions = append(r.Suggestions, "Add another word or two. Uncommon words are better.")
	}
	if utf8.RuneCountInString(pw) < DefaultMinLength {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf("Use at least %d characters.", DefaultMinLength))
	}
	if !strings.ContainsFunc(pw, unicode.IsUpper) {
		r.Suggestions = append(r.Suggestions, "Add uppercase letters.")
	}
	if !strings.ContainsFunc(pw, unicode.IsDigit) {
		r.Suggestions = append(r.Suggestions, "Include at least one number.")
	}
	if !strings.ContainsAny(pw, Symbols) {
		r.Suggestions = append(r.Suggestions, "Add special characters (e.g. @, #, $, !).")
	}
	if r.Passphrase {
		r.Suggestions = append(r.Suggestions, "Passphrases with multiple random words are a great choice.")
	}

	r.Strength = StrengthLabels[r.Score]
	return r
}

// warningFor turns one zxcvbn match into user feedback. Bruteforce segments
// produce none.
func warningFor(m match.Match) string {
	switch m.Pattern {
	case "dictionary":
		if strings.EqualFold(m.DictionaryName, "passwords") {
			return "This is similar to a commonly used password."
		}
		return "A word by itself is easy to guess."
	case "spatial":
		return "Keyboard patterns like '" + m.Token + "' are easy to guess."
	case "repeat":
		return "Repeats like '" + m.Token + "' are easy to guess."
	case "sequence":
		return "Sequences like abc or 6543 are easy to guess."
	case "date", "year":
		return "Dates and years are often easy to guess."
	default:
		return ""
	}
}

func passphraseScore(bits float64) int {
	switch {
	case bits < 40:
		return 1
	case bits < 60:
		return 2
	case bits < 80:
		return 3
	default:
		return 4
	}
}

func clampScore(score int) int {
	return min(max(score, 0), len(StrengthLabels)-1)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
