package words

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Translator maps an unordered set of source words to their acceptable
// translations. It is the only contract MatchTask depends on (spec.md §4.8);
// any I/O error is the signal MatchTask treats as "translation service
// unavailable."
type Translator interface {
	Translate(ctx context.Context, sourceWords []string) (map[string][]string, error)
}

// myMemoryResponse is the subset of the MyMemory API's JSON shape that
// WQWords.getTranslation reads (the "matches" array's "translation" field).
type myMemoryResponse struct {
	Matches []struct {
		Translation string `json:"translation"`
	} `json:"matches"`
}

// MyMemoryTranslator fetches translations from the MyMemory API over HTTP,
// grounded on WQWords.getTranslation's GET to
// api.mymemory.translated.net/get?q=...&langpair=it|en. The resty client
// (rather than a bare net/http.Client) is the HTTP idiom carried over from
// vic2-multi-proxy's resty-based fetchers elsewhere in this retrieval pack.
type MyMemoryTranslator struct {
	client             *resty.Client
	sourceLang, target string
}

// NewMyMemoryTranslator builds a translator for the given language pair
// (e.g. "it", "en").
func NewMyMemoryTranslator(sourceLang, targetLang string, timeout time.Duration) *MyMemoryTranslator {
	client := resty.New().
		SetBaseURL("https://api.mymemory.translated.net").
		SetTimeout(timeout).
		SetRetryCount(1)
	return &MyMemoryTranslator{client: client, sourceLang: sourceLang, target: targetLang}
}

// Translate fetches, normalizes, and returns the acceptable translations for
// every word in sourceWords. Returns an error on the first request failure —
// MatchTask treats that as translator-unavailable for the whole match.
func (t *MyMemoryTranslator) Translate(ctx context.Context, sourceWords []string) (map[string][]string, error) {
	out := make(map[string][]string, len(sourceWords))
	for _, word := range sourceWords {
		var body myMemoryResponse
		resp, err := t.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":        word,
				"langpair": fmt.Sprintf("%s|%s", t.sourceLang, t.target),
			}).
			SetResult(&body).
			Get("/get")
		if err != nil {
			return nil, fmt.Errorf("words: translating %q: %w", word, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("words: translating %q: http %d", word, resp.StatusCode())
		}

		translations := make([]string, 0, len(body.Matches))
		seen := make(map[string]struct{}, len(body.Matches))
		for _, m := range body.Matches {
			n := Normalize(m.Translation)
			if n == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			translations = append(translations, n)
		}
		out[word] = translations
	}
	return out, nil
}
