package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Suggester uses an LLM to propose tags for a draft record.
type Suggester struct {
	client    *openai.Client
	config    Config
	systemMsg string
}

// Config holds LLM settings for tag suggestion.
type Config struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Endpoint     string  `yaml:"endpoint" json:"endpoint,omitempty"`
	APIKey       string  `yaml:"api_key" json:"api_key,omitempty"`
	Model        string  `yaml:"model" json:"model"`
	Temperature  float64 `yaml:"temperature" json:"temperature"`
	MaxTokens    int     `yaml:"max_tokens" json:"max_tokens"`
	MaxTags      int     `yaml:"max_tags" json:"max_tags"`
	SystemPrompt string  `yaml:"system_prompt" json:"system_prompt,omitempty"`
}

// NewSuggester creates an LLM-backed tag suggester.
func NewSuggester(cfg Config) *Suggester {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxTags == 0 {
		cfg.MaxTags = 5
	}

	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &Suggester{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// default system prompt for tag suggestion
const defaultSystemPrompt = `You are an assistant that suggests tags for blog posts.
Given a post's title and content, suggest short tags that describe its subject matter.

Rules:
- each tag is a single word or a short hyphenated phrase
- prefer tags from the provided vocabulary when they fit
- only invent a new tag when nothing in the vocabulary applies
- never suggest duplicate or near-duplicate tags

Respond with a JSON array of tag strings only, e.g. ["golang", "testing"].`

// Suggest proposes up to MaxTags tags for the given title and content.
// The vocabulary lists tags already in use; the model is steered toward them.
func (s *Suggester) Suggest(ctx context.Context, title, content string, vocabulary []string) ([]string, error) {
	prompt := s.buildPrompt(title, content, vocabulary)

	// retry a few times if the model returns invalid JSON
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req := openai.ChatCompletionRequest{
			Model:       s.config.Model,
			Temperature: float32(s.config.Temperature),
			MaxTokens:   s.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: s.systemMsg},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		}

		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from llm")
		}

		tags, err := s.parseResponse(resp.Choices[0].Message.Content)
		if err == nil {
			return tags, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed after 3 attempts: %w", lastErr)
}

// buildPrompt creates the user prompt for the LLM
func (s *Suggester) buildPrompt(title, content string, vocabulary []string) string {
	var sb strings.Builder

	if len(vocabulary) > 0 {
		sb.WriteString("Known tags (use one of these when applicable):\n")
		sb.WriteString(strings.Join(vocabulary, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Suggest up to %d tags for this post:\n\n", s.config.MaxTags))
	sb.WriteString(fmt.Sprintf("Title: %s\n", title))
	if content != "" {
		// limit content to first 1000 chars
		if len(content) > 1000 {
			content = content[:1000] + "..."
		}
		sb.WriteString(fmt.Sprintf("Content: %s\n", content))
	}
	sb.WriteString("\nRespond with a JSON array of tag strings.")
	return sb.String()
}

// parseResponse extracts the tag array from the LLM response and normalizes
// tags to upper case, dropping duplicates and empty entries.
func (s *Suggester) parseResponse(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no json array found in response")
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse json array response: %w", err)
	}

	seen := map[string]struct{}{}
	var tags []string
	for _, t := range raw {
		tag := strings.ToUpper(strings.TrimSpace(t))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == s.config.MaxTags {
			break
		}
	}
	return tags, nil
}
