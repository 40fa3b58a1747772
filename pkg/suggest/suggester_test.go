package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestSuggester_Suggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Title: Go generics in practice")
		assert.Contains(t, req.Messages[1].Content, "GOLANG, TESTING")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(`Sure, here are the tags:

["golang", "generics", "Golang", " testing "]`))
	}))
	defer server.Close()

	s := NewSuggester(Config{Endpoint: server.URL + "/v1", APIKey: "test-key", Model: "gpt-4o-mini"})

	tags, err := s.Suggest(context.Background(), "Go generics in practice", "Type parameters arrived in Go 1.18...",
		[]string{"GOLANG", "TESTING"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLANG", "GENERICS", "TESTING"}, tags, "normalized, deduplicated, order kept")
}

func TestSuggester_MaxTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(`["a", "b", "c", "d"]`))
	}))
	defer server.Close()

	s := NewSuggester(Config{Endpoint: server.URL + "/v1", APIKey: "k", MaxTags: 2})

	tags, err := s.Suggest(context.Background(), "title", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tags)
}

func TestSuggester_RetriesOnBadJSON(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			json.NewEncoder(w).Encode(chatResponse(`no tags for you`))
			return
		}
		json.NewEncoder(w).Encode(chatResponse(`["docker"]`))
	}))
	defer server.Close()

	s := NewSuggester(Config{Endpoint: server.URL + "/v1", APIKey: "k"})

	tags, err := s.Suggest(context.Background(), "title", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DOCKER"}, tags)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSuggester_FailsAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse(`still no json here`))
	}))
	defer server.Close()

	s := NewSuggester(Config{Endpoint: server.URL + "/v1", APIKey: "k"})

	_, err := s.Suggest(context.Background(), "title", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestSuggester_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewSuggester(Config{Endpoint: server.URL + "/v1", APIKey: "k"})

	_, err := s.Suggest(context.Background(), "title", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm request failed")
}
