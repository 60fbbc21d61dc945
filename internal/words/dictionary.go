package words

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Dictionary is the newline-delimited source-word list loaded once at
// startup, grounded on WQWords's constructor (BufferedReader over
// ItalianDictionary.txt).
type Dictionary struct {
	words []string
}

// LoadDictionary reads path, one word per line, skipping blank lines.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	var list []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("words: reading dictionary %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("words: dictionary %s is empty", path)
	}
	return &Dictionary{words: list}, nil
}

// PickN draws n distinct words at random, matching requestWords's
// duplicate-suppressing selection loop (spec.md §4.4.7). Panics if n exceeds
// the dictionary size, since that is a configuration error the server should
// refuse to start with, not silently degrade on mid-match.
func (d *Dictionary) PickN(n int, rng *rand.Rand) []string {
	if n > len(d.words) {
		panic(fmt.Sprintf("words: requested %d words from a dictionary of %d", n, len(d.words)))
	}
	seen := make(map[string]struct{}, n)
	picked := make([]string, 0, n)
	for len(picked) < n {
		w := d.words[rng.Intn(len(d.words))]
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		picked = append(picked, w)
	}
	return picked
}

// Size returns the number of distinct words available.
func (d *Dictionary) Size() int {
	return len(d.words)
}
