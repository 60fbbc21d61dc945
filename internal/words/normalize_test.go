package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"House":     "house",
		"dog-house": "doghouse",
		"Cat 9":     "cat ",
		"":          "",
		"Àccent":    "ccent",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}
