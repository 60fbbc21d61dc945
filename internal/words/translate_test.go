package words

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyMemoryTranslatorNormalizesAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(myMemoryResponse{
			Matches: []struct {
				Translation string `json:"translation"`
			}{
				{Translation: "House"},
				{Translation: "house!"},
				{Translation: "Cottage 2"},
			},
		})
	}))
	defer srv.Close()

	tr := &MyMemoryTranslator{
		client:     resty.New().SetBaseURL(srv.URL).SetTimeout(5 * time.Second),
		sourceLang: "it",
		target:     "en",
	}

	out, err := tr.Translate(context.Background(), []string{"casa"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"house", "cottage "}, out["casa"])
}

func TestMyMemoryTranslatorSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := &MyMemoryTranslator{
		client:     resty.New().SetBaseURL(srv.URL).SetTimeout(5 * time.Second),
		sourceLang: "it",
		target:     "en",
	}

	_, err := tr.Translate(context.Background(), []string{"casa"})
	assert.Error(t, err)
}
