package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"plain object":  `{"a":1}`,
		"fenced":        "```json\n{\"a\":1}\n```",
		"think prefix":  "<think>hmm {not json}</think>\n{\"a\":1}",
		"prose around":  "Here you go: {\"a\":1} hope it helps",
		"brace in text": `{"a":1,"b":"}{"}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := ExtractJSON(in)
			require.NoError(t, err)
			var v map[string]any
			require.NoError(t, json.Unmarshal(out, &v))
			assert.Equal(t, 1.0, v["a"])
		})
	}

	arr, err := ExtractJSON("result: [1, 2]")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(arr))

	_, err = ExtractJSON("sorry, I cannot help")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestChain_FallsBackToNextProvider(t *testing.T) {
	first := &Mock{ProviderName: "first", Err: errors.New("rate limited")}
	second := &Mock{ProviderName: "second", Responses: []string{`{"ok":true}`}}
	chain := NewChain(time.Second, quiet, first, second)

	out, err := chain.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))
	assert.Len(t, first.Requests(), 1)
	assert.Len(t, second.Requests(), 1)
	assert.Equal(t, []string{"first", "second"}, chain.Providers())
}

func TestChain_AllFailingIsTransportError(t *testing.T) {
	chain := NewChain(time.Second, quiet,
		&Mock{ProviderName: "a", Err: errors.New("down")},
		&Mock{ProviderName: "b", Err: errors.New("down too")},
	)

	_, err := chain.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.Contains(t, err.Error(), "down too")
}

func TestChain_Empty(t *testing.T) {
	chain := NewChain(0, quiet)
	assert.False(t, chain.Configured())

	_, err := chain.Complete(context.Background(), Request{})
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.True(t, errors.Is(err, ErrNoProvider))
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"items\":[]}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{Name: "openai", BaseURL: srv.URL + "/v1/", APIKey: "key", Model: "gpt-4o-mini", StructuredOutput: true})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), Request{
		Prompt:     "suggest careers",
		Schema:     json.RawMessage(`{"type":"object","properties":{"items":{"type":"array"}}}`),
		SchemaName: "career_paths",
		Images:     []Image{{MediaType: "image/png", Data: []byte("png-bytes")}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(out))

	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "career_paths", format["json_schema"].(map[string]any)["name"])

	messages := got["messages"].([]any)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "suggest careers", parts[0].(map[string]any)["text"])
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", image["url"])
}

func TestOpenAIProvider_SchemaInSystemPrompt(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"<think>x</think>`+"```json\\n{\\\"feedback\\\":\\\"good\\\"}\\n```"+`"}}]}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{Name: "deepseek", BaseURL: srv.URL, Model: "deepseek-chat"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), Request{Prompt: "rate", Schema: json.RawMessage(`{"type":"object"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feedback":"good"}`, string(out))

	assert.Equal(t, "json_object", got["response_format"].(map[string]any)["type"])
	system := got["messages"].([]any)[0].(map[string]any)["content"].(string)
	assert.Contains(t, system, `{"type":"object"}`)
}

func TestOpenAIProvider_HTTPErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
}

func TestAnthropicProvider(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"m1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"{\"tips\":[\"quantify impact\"]}"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropic("key", "claude-sonnet-4-5-20250929", anthropic.WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), Request{
		Prompt: "tips",
		Schema: json.RawMessage(`{"type":"object"}`),
		Images: []Image{{MediaType: "image/jpeg", Data: []byte("jpg")}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tips":["quantify impact"]}`, string(out))
	assert.Contains(t, string(body), "JSON Schema")

	var sent struct {
		Messages []struct {
			Content []struct {
				Type   string `json:"type"`
				Source struct {
					Type      string `json:"type"`
					MediaType string `json:"media_type"`
					Data      string `json:"data"`
				} `json:"source"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &sent))
	require.Len(t, sent.Messages, 1)
	content := sent.Messages[0].Content
	require.Len(t, content, 2)
	assert.Equal(t, "image", content[0].Type)
	assert.Equal(t, "base64", content[0].Source.Type)
	assert.Equal(t, "image/jpeg", content[0].Source.MediaType)
	assert.Equal(t, "anBn", content[0].Source.Data)
	assert.Equal(t, "text", content[1].Type)
}

func TestNewProviders_RequireSettings(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAI(OpenAIConfig{BaseURL: "http://x"})
	assert.Error(t, err)
	_, err = NewAnthropic("", "m")
	assert.Error(t, err)
}
