package password

import (
	"testing"

	"github.com/nbutton23/zxcvbn-go/match"
	"github.com/stretchr/testify/assert"
)

func TestAnalyze_CommonPassword(t *testing.T) {
	r := Analyze("password1234")

	assert.LessOrEqual(t, r.Score, 1)
	assert.False(t, r.Passphrase)
	assert.NotEmpty(t, r.Warnings)
	assert.NotEmpty(t, r.CrackTime)
	assert.Contains(t, r.Suggestions, "Add uppercase letters.")
	assert.Contains(t, r.Suggestions, "Add another word or two. Uncommon words are better.")
	assert.Equal(t, StrengthLabels[r.Score], r.Strength)
}

func TestAnalyze_RandomPasswordIsVeryStrong(t *testing.T) {
	r := Analyze("xK9#mQ2$vL7!pR4&wT8*")

	assert.Equal(t, 4, r.Score)
	assert.Equal(t, "Very Strong", r.Strength)
	assert.False(t, r.Passphrase)
	assert.Empty(t, r.Warnings)
	assert.Equal(t, "centuries", r.CrackTime)
}

func TestAnalyze_StrongerPasswordScoresHigher(t *testing.T) {
	weak := Analyze("qwerty")
	strong := Analyze("T7#vq!Lm2@Rz9&Xp")

	assert.Less(t, weak.Score, strong.Score)
	assert.Less(t, weak.Entropy, strong.Entropy)
}

func TestAnalyze_Passphrase(t *testing.T) {
	tests := []struct {
		phrase string
		score  int
	}{
		{"lake moon tree", 1},
		{"lake moon tree fish", 2},
		{"lake moon tree fish wolf", 3},
		{"lake moon tree fish wolf gold ring", 4},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			r := Analyze(tt.phrase)
			assert.True(t, r.Passphrase)
			assert.Equal(t, tt.score, r.Score)
			assert.Contains(t, r.CrackTime, "bits of entropy")
			assert.Contains(t, r.Suggestions, "Passphrases with multiple random words are a great choice.")
			assert.NotContains(t, r.Suggestions, "Add another word or two. Uncommon words are better.")
		})
	}
}

func TestAnalyze_LongPassphraseWarning(t *testing.T) {
	r := Analyze("one two three four five six seven eight nine")
	assert.Contains(t, r.Warnings, "Overly long passphrases may be hard to remember.")
}

func TestWarningFor(t *testing.T) {
	tests := []struct {
		name string
		m    match.Match
		want string
	}{
		{"common password", match.Match{Pattern: "dictionary", DictionaryName: "Passwords", Token: "password"}, "This is similar to a commonly used password."},
		{"english word", match.Match{Pattern: "dictionary", DictionaryName: "English", Token: "river"}, "A word by itself is easy to guess."},
		{"keyboard", match.Match{Pattern: "spatial", Token: "asdf"}, "Keyboard patterns like 'asdf' are easy to guess."},
		{"repeat", match.Match{Pattern: "repeat", Token: "aaa"}, "Repeats like 'aaa' are easy to guess."},
		{"sequence", match.Match{Pattern: "sequence", Token: "abcd"}, "Sequences like abc or 6543 are easy to guess."},
		{"year", match.Match{Pattern: "year", Token: "1999"}, "Dates and years are often easy to guess."},
		{"bruteforce", match.Match{Pattern: "bruteforce", Token: "x9"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, warningFor(tt.m))
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-1))
	assert.Equal(t, 3, clampScore(3))
	assert.Equal(t, 4, clampScore(7))
}
