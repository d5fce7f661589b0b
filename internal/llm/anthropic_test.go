package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicAgainst(t *testing.T, api *fakeAPI) *AnthropicProvider {
	t.Helper()
	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(api.start(t)),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: resolveModel("claude-haiku", anthropicModels)}
}

func anthropicMessage(text, stop string) map[string]any {
	content := []map[string]any{}
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	return map[string]any{
		"id":          "msg_judge",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     content,
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 61, "output_tokens": 14},
	}
}

func TestAnthropicGenerate_AcceptsAccentVariant(t *testing.T) {
	api := &fakeAPI{body: anthropicMessage(`{"acceptable":true,"reason":"only the accent differs"}`, "end_turn")}
	p := anthropicAgainst(t, api)

	resp, err := p.Generate(context.Background(), judgeRequest("à la maison", "a la maison"))
	require.NoError(t, err)

	v := decodeVerdict(t, resp)
	assert.True(t, v.Acceptable)
	assert.Equal(t, "only the accent differs", v.Reason)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 61, OutputTokens: 14, TotalTokens: 75}, resp.Usage)

	body := api.lastBody(t)
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"acceptable"`, "verdict schema sent with the request")
	assert.Contains(t, string(raw), "language-learning quiz")
}

func TestAnthropicGenerate_RejectsWrongPerson(t *testing.T) {
	api := &fakeAPI{body: anthropicMessage(`{"acceptable":false,"reason":"third person, expected first"}`, "end_turn")}
	p := anthropicAgainst(t, api)

	resp, err := p.Generate(context.Background(), judgeRequest("je bois", "il boit"))
	require.NoError(t, err)
	assert.False(t, decodeVerdict(t, resp).Acceptable)
}

func TestAnthropicGenerate_VerdictOffSchema(t *testing.T) {
	for name, text := range map[string]string{
		"string flag":    `{"acceptable":"yes","reason":"close enough"}`,
		"missing reason": `{"acceptable":true}`,
		"extra field":    `{"acceptable":true,"reason":"ok","score":0.9}`,
		"prose":          `The answer is acceptable.`,
	} {
		t.Run(name, func(t *testing.T) {
			p := anthropicAgainst(t, &fakeAPI{body: anthropicMessage(text, "end_turn")})

			_, err := p.Generate(context.Background(), judgeRequest("le lycée", "le lycee"))
			var inv *ErrInvalidResponse
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, text, string(inv.Content))
		})
	}
}

func TestAnthropicGenerate_TruncatedVerdict(t *testing.T) {
	p := anthropicAgainst(t, &fakeAPI{body: anthropicMessage(`{"acceptable":tr`, "max_tokens")})

	_, err := p.Generate(context.Background(), judgeRequest("nous allons", "nous allons"))
	var trunc *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &trunc)
	assert.Equal(t, `{"acceptable":tr`, string(trunc.Content))
}

func TestAnthropicGenerate_NoTextBlock(t *testing.T) {
	p := anthropicAgainst(t, &fakeAPI{body: anthropicMessage("", "end_turn")})

	_, err := p.Generate(context.Background(), judgeRequest("les", "les"))
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestAnthropicGenerate_StatusErrors(t *testing.T) {
	errBody := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
	}

	t.Run("rate limited", func(t *testing.T) {
		api := &fakeAPI{status: http.StatusTooManyRequests, body: errBody("rate_limit_error")}
		_, err := anthropicAgainst(t, api).Generate(context.Background(), judgeRequest("le", "le"))
		var rl *ErrRateLimit
		assert.ErrorAs(t, err, &rl)
		assert.Equal(t, 1, api.calls())
	})

	t.Run("overloaded", func(t *testing.T) {
		api := &fakeAPI{status: http.StatusInternalServerError, body: errBody("api_error")}
		_, err := anthropicAgainst(t, api).Generate(context.Background(), judgeRequest("le", "le"))
		var unavail *ErrProviderUnavailable
		assert.ErrorAs(t, err, &unavail)
	})
}

func TestNewAnthropicProvider(t *testing.T) {
	_, err := NewAnthropicProvider(ProviderConfig{})
	assert.Error(t, err, "API key is required")

	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.ModelID())

	p, err = NewAnthropicProvider(ProviderConfig{APIKey: "k", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", p.ModelID(), "unknown names pass through")
}
