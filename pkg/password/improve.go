package password

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// improveSymbols is the subset of Symbols appended by Improve.
const improveSymbols = "!@#$%&*_-+?"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Improve returns a password that satisfies every requirement of the
// generator's policy. The input is kept as a prefix, with whitespace runs
// replaced by "_", and only missing character classes and length padding are
// appended.
func (g *Generator) Improve(pw string) (string, error) {
	base := whitespaceRun.ReplaceAllString(strings.TrimSpace(pw), "_")

	var b strings.Builder
	b.WriteString(base)

	for _, req := range g.policy.Evaluate(base).Missing {
		set := charsFor(req)
		if set == "" {
			continue
		}
		c, err := g.pick(set)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}

	minLength := g.policy.MinLength
	if minLength < 1 {
		minLength = DefaultMinLength
	}
	for utf8.RuneCountInString(b.String()) < minLength {
		c, err := g.pick(Alphabet)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}

	return b.String(), nil
}

func charsFor(req Requirement) string {
	switch req {
	case RequireUppercase:
		return upperChars
	case RequireLowercase:
		return lowerChars
	case RequireDigit:
		return digitChars
	case RequireSymbol:
		return improveSymbols
	default:
		return ""
	}
}

var (
	phraseStrip      = regexp.MustCompile(`[<>"']`)
	phraseSeparators = []string{"@", "#", "$", "%", "&", "_", "-", "="}
)

// FromPhrase builds a password from a memorable sentence. Letters are randomly
// cased, words are joined by a random separator, an optional symbol prefix and
// number/symbol suffix are added, and the result is passed through Improve.
func (g *Generator) FromPhrase(phrase string) (string, error) {
	phrase = phraseStrip.ReplaceAllString(phrase, "")
	phrase = strings.TrimSpace(whitespaceRun.ReplaceAllString(phrase, " "))
	if phrase == "" {
		return "", fmt.Errorf("%w: phrase is empty", ErrInvalidParameter)
	}

	i, err := g.intn(len(phraseSeparators))
	if err != nil {
		return "", err
	}
	sep := phraseSeparators[i]

	words := strings.Split(phrase, " ")
	for n, w := range words {
		cased, err := g.randomCase(w)
		if err != nil {
			return "", err
		}
		words[n] = cased
	}

	var b strings.Builder
	if ok, err := g.chance(7, 10); err != nil {
		return "", err
	} else if ok {
		c, err := g.pick(improveSymbols)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}

	b.WriteString(strings.Join(words, sep))

	if ok, err := g.chance(9, 10); err != nil {
		return "", err
	} else if ok {
		n, err := g.intn(9990)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%d", n+10)
	}
	if ok, err := g.chance(8, 10); err != nil {
		return "", err
	} else if ok {
		c, err := g.pick(improveSymbols)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}

	return g.Improve(b.String())
}

// randomCase uppercases each letter with probability 1/4 and lowercases the rest.
func (g *Generator) randomCase(word string) (string, error) {
	var b strings.Builder
	for _, r := range word {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		up, err := g.chance(1, 4)
		if err != nil {
			return "", err
		}
		if up {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String(), nil
}
