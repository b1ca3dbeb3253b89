package password

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWordlist(t *testing.T) {
	input := `# diceware dictionary
11111 abacus
11112 abdomen

11113 abacus
zebra
66666
`
	words, err := ParseWordlist(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"abacus", "abdomen", "zebra"}, words)
}

func TestParseWordlist_Empty(t *testing.T) {
	words, err := ParseWordlist(strings.NewReader("\n# nothing here\n"))
	require.NoError(t, err)
	assert.Empty(t, words)

	_, _, err = NewGenerator(words).Diceware(3, SeparatorSpace)
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestDefaultWords(t *testing.T) {
	words := DefaultWords()
	require.NotEmpty(t, words)
	for _, w := range words {
		assert.NotContains(t, w, " ")
	}
}

func TestLoadWordlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dice.txt")
	require.NoError(t, os.WriteFile(path, []byte("11111 apple\n11112 banana\n"), 0o600))

	words, err := LoadWordlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, words)

	_, err = LoadWordlist(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
