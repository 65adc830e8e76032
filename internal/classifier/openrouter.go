// Package classifier provides concrete backends for the pipeline's
// Classifier capability: an LLM-backed backend over the OpenRouter API, a
// deterministic rule-based backend for offline operation, and a Redis
// read-through cache that can wrap either.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/whisper/sentinel/internal/pipeline"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// systemPrompt carries the moderation policy. The strictness rule matters:
// content that clearly violates guidelines must land in "inappropriate",
// never "questionable".
const systemPrompt = `You are a content moderation system. Classify content into EXACTLY ONE of these severity levels:

1. safe - Content is appropriate, follows guidelines, no issues

2. questionable - Content is borderline, may contain mild profanity or be slightly inappropriate but not clearly harmful. Examples: mild swearing, borderline language, controversial opinions.

3. inappropriate - Content clearly violates community guidelines. Contains strong profanity, harassment, spam, or explicit content. Should be rejected. Examples: strong profanity, personal attacks, spam, explicit sexual content.

4. harmful - Content is dangerous, illegal, or severely violates guidelines. Examples: threats, hate speech, illegal content, severe harassment, scams.

Be strict: if content clearly violates guidelines, classify as "inappropriate", not "questionable".

Respond in JSON format only:
{
  "severity": "safe|questionable|inappropriate|harmful",
  "explanation": "brief rationale"
}`

// OpenRouterConfig holds settings for the OpenRouter backend.
type OpenRouterConfig struct {
	APIKey  string
	Model   string        // e.g. "openai/gpt-4o-mini"
	BaseURL string        // override for tests; defaults to the OpenRouter endpoint
	Timeout time.Duration // HTTP client timeout; defaults to 60s
}

// OpenRouter classifies content with a chat-completion model behind the
// OpenRouter API.
type OpenRouter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenRouter creates an OpenRouter backend from the given config.
func NewOpenRouter(config OpenRouterConfig) *OpenRouter {
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &OpenRouter{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// Classify submits the content and metadata summary to the model and parses
// the structured verdict. Any label outside the four-severity contract is
// an error, never silently defaulted.
func (o *OpenRouter) Classify(ctx context.Context, content, metadataSummary string) (pipeline.Classification, error) {
	userPrompt := fmt.Sprintf("Analyze the following content:\n\nContent: %s\n\nAnalysis Metadata:\n%s",
		content, metadataSummary)

	reqBody := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return pipeline.Classification{}, fmt.Errorf("classifier: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(body))
	if err != nil {
		return pipeline.Classification{}, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return pipeline.Classification{}, fmt.Errorf("classifier: openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pipeline.Classification{}, fmt.Errorf("classifier: openrouter status %d", resp.StatusCode)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return pipeline.Classification{}, fmt.Errorf("classifier: decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return pipeline.Classification{}, fmt.Errorf("classifier: empty model response")
	}

	return parseVerdict(apiResp.Choices[0].Message.Content)
}

// parseVerdict extracts the {severity, explanation} object from the model
// output, stripping markdown code fences if the model wrapped its JSON.
func parseVerdict(content string) (pipeline.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var verdict struct {
		Severity    string `json:"severity"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return pipeline.Classification{}, fmt.Errorf("classifier: malformed verdict %q: %w", content, err)
	}

	severity, ok := pipeline.ParseSeverity(verdict.Severity)
	if !ok {
		return pipeline.Classification{}, fmt.Errorf("classifier: severity %q outside contract", verdict.Severity)
	}

	return pipeline.Classification{Severity: severity, Explanation: verdict.Explanation}, nil
}
