package password

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Bounds for generation requests.
const (
	MinRandomLength = 8
	MaxRandomLength = 128
	MinWordCount    = 1
	MaxWordCount    = 32

	DefaultRandomLength = 24
	DefaultWordCount    = 5
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	letterChars = upperChars + lowerChars
)

// Alphabet is the character set used by Random.
const Alphabet = letterChars + digitChars + Symbols

// Separator selects how diceware words are joined.
type Separator string

const (
	SeparatorSpace      Separator = "space"
	SeparatorDash       Separator = "dash"
	SeparatorUnderscore Separator = "underscore"
	SeparatorSlash      Separator = "slash"
	SeparatorRandom     Separator = "random"
)

var separatorValues = map[Separator]string{
	SeparatorSpace:      " ",
	SeparatorDash:       "-",
	SeparatorUnderscore: "_",
	SeparatorSlash:      "/",
}

// concreteSeparators is ordered so that random resolution is uniform and stable.
var concreteSeparators = []Separator{SeparatorSpace, SeparatorDash, SeparatorUnderscore, SeparatorSlash}

// ParseSeparator converts a request value into a Separator. An empty value
// selects SeparatorSpace.
func ParseSeparator(s string) (Separator, error) {
	sep := Separator(strings.ToLower(strings.TrimSpace(s)))
	if sep == "" {
		return SeparatorSpace, nil
	}
	if sep == SeparatorRandom {
		return sep, nil
	}
	if _, ok := separatorValues[sep]; !ok {
		return "", fmt.Errorf("%w: unknown separator %q", ErrInvalidParameter, s)
	}
	return sep, nil
}

// Value returns the literal joiner for a concrete separator.
func (s Separator) Value() string {
	return separatorValues[s]
}

// Generator produces random and diceware passwords and strengthens existing
// ones. All randomness comes from a cryptographically secure source.
type Generator struct {
	rand   io.Reader
	words  []string
	policy Policy
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandSource overrides the random source. It must be cryptographically secure.
func WithRandSource(r io.Reader) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// WithPolicy sets the policy Improve targets.
func WithPolicy(p Policy) Option {
	return func(g *Generator) {
		g.policy = p
	}
}

// NewGenerator creates a generator over the given word corpus.
func NewGenerator(words []string, opts ...Option) *Generator {
	g := &Generator{
		rand:   rand.Reader,
		words:  words,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the policy the generator improves towards.
func (g *Generator) Policy() Policy {
	return g.policy
}

// WordCount returns the size of the diceware corpus.
func (g *Generator) WordCount() int {
	return len(g.words)
}

// Random returns length characters drawn independently and uniformly from Alphabet.
func (g *Generator) Random(length int) (string, error) {
	if length < MinRandomLength || length > MaxRandomLength {
		return "", fmt.Errorf("%w: length must be between %d and %d", ErrInvalidParameter, MinRandomLength, MaxRandomLength)
	}

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		c, err := g.pick(Alphabet)
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// Diceware joins count words drawn uniformly with replacement from the corpus.
// SeparatorRandom is resolved once per call; the resolved separator is returned.
func (g *Generator) Diceware(count int, sep Separator) (string, Separator, error) {
	if count < MinWordCount || count > MaxWordCount {
		return "", "", fmt.Errorf("%w: count must be between %d and %d", ErrInvalidParameter, MinWordCount, MaxWordCount)
	}
	if sep == "" {
		sep = SeparatorSpace
	}
	if sep != SeparatorRandom {
		if _, ok := separatorValues[sep]; !ok {
			return "", "", fmt.Errorf("%w: unknown separator %q", ErrInvalidParameter, sep)
		}
	}
	if len(g.words) == 0 {
		return "", "", ErrGeneratorUnavailable
	}

	if sep == SeparatorRandom {
		i, err := g.intn(len(concreteSeparators))
		if err != nil {
			return "", "", err
		}
		sep = concreteSeparators[i]
	}

	words := make([]string, count)
	for i := range words {
		n, err := g.intn(len(g.words))
		if err != nil {
			return "", "", err
		}
		words[i] = g.words[n]
	}
	return strings.Join(words, sep.Value()), sep, nil
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random source: %w", err)
	}
	return int(v.Int64()), nil
}

func (g *Generator) pick(set string) (byte, error) {
	i, err := g.intn(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// chance reports true with probability num/den.
func (g *Generator) chance(num, den int) (bool, error) {
	v, err := g.intn(den)
	if err != nil {
		return false, err
	}
	return v < num, nil
}
