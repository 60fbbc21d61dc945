package words

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDictionarySkipsBlankLines(t *testing.T) {
	path := writeDict(t, "casa", "", "cane", "  ", "gatto")
	d, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Size())
}

func TestLoadDictionaryEmptyIsError(t *testing.T) {
	path := writeDict(t)
	_, err := LoadDictionary(path)
	assert.Error(t, err)
}

func TestPickNNoDuplicates(t *testing.T) {
	path := writeDict(t, "casa", "cane", "gatto", "topo", "pesce")
	d, err := LoadDictionary(path)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	picked := d.PickN(3, rng)
	require.Len(t, picked, 3)

	seen := map[string]bool{}
	for _, w := range picked {
		assert.False(t, seen[w], "PickN must not repeat a word within one draw")
		seen[w] = true
	}
}

func TestPickNPanicsWhenDictionaryTooSmall(t *testing.T) {
	path := writeDict(t, "casa", "cane")
	d, err := LoadDictionary(path)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	assert.Panics(t, func() { d.PickN(5, rng) })
}
