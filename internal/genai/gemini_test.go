package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient(srv.URL, "test-key")
}

func candidateBody(text string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return b
}

func TestGenerateReturnsFirstCandidate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	c := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write(candidateBody("  A sentence worth keeping.  "))
	})

	text, err := c.Generate(context.Background(), "gemini-2.5-flash-lite", "say something")
	require.NoError(t, err)
	assert.Equal(t, "A sentence worth keeping.", text)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash-lite:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "say something", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerate503IsOverloaded(t *testing.T) {
	c := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"UNAVAILABLE"}}`, http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), "gemini-2.5-flash-lite", "x")
	assert.ErrorIs(t, err, ErrOverloaded)
}

func TestGenerateOtherStatusIsPlainError(t *testing.T) {
	c := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), "gemini-2.5-flash-lite", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOverloaded)
}

func TestGenerateEmptyCandidates(t *testing.T) {
	c := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Generate(context.Background(), "gemini-2.5-flash-lite", "x")
	assert.EqualError(t, err, "empty response")
}

func TestGenerateBlankTextIsEmptyResponse(t *testing.T) {
	c := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(candidateBody("   "))
	})

	_, err := c.Generate(context.Background(), "gemini-2.5-flash-lite", "x")
	assert.EqualError(t, err, "empty response")
}
