package password

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed wordlist.txt
var embeddedWordlist string

// DefaultWords returns the embedded diceware corpus.
func DefaultWords() []string {
	words, _ := ParseWordlist(strings.NewReader(embeddedWordlist))
	return words
}

// LoadWordlist reads a corpus from path. See ParseWordlist for the format.
func LoadWordlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	return ParseWordlist(f)
}

// ParseWordlist reads one word per line. Lines in the diceware dictionary
// format "11111 word" contribute the word after the dice key. Blank lines,
// "#" comments and duplicates are skipped.
func ParseWordlist(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		word := fields[len(fields)-1]
		if len(fields) == 1 && isDiceKey(word) {
			continue
		}

		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return words, nil
}

func isDiceKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '1' || r > '6' {
			return false
		}
	}
	return true
}
