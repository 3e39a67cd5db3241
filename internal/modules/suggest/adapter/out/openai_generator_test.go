package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	missiondomain "ascend/internal/modules/mission/domain"
	adapterout "ascend/internal/modules/suggest/adapter/out"
	"ascend/internal/modules/suggest/domain"
)

func completionServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGeneratorSuggest(t *testing.T) {
	var request map[string]any
	srv := completionServer(t, `{"missions":[{"title":"Run 5k","category":"sport","priority":"high","rationale":"base"}]}`, &request)
	gen, err := adapterout.NewOpenAIGenerator(adapterout.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"}, zerolog.Nop())
	require.NoError(t, err)

	got, err := gen.Suggest(context.Background(), domain.Request{
		Categories: []missiondomain.Category{missiondomain.CategorySport},
		Existing:   []string{"Swim"},
		Count:      2,
	})
	require.NoError(t, err)
	require.Equal(t, []domain.Candidate{{Title: "Run 5k", Category: "sport", Priority: "high", Rationale: "base"}}, got)

	require.Equal(t, "gpt-4o-mini", request["model"])
	format, ok := request["response_format"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json_object", format["type"])
	messages, ok := request["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	require.Contains(t, messages[1].(map[string]any)["content"], "Do not repeat these planned missions: Swim")
}

func TestOpenAIGeneratorQuizAndBadPayload(t *testing.T) {
	srv := completionServer(t, `{"prompt":"Past tense of go?","options":["goed","went"],"correct_index":1,"explanation":"irregular"}`, nil)
	gen, err := adapterout.NewOpenAIGenerator(adapterout.OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"}, zerolog.Nop())
	require.NoError(t, err)
	item, err := gen.Quiz(context.Background(), "irregular verbs")
	require.NoError(t, err)
	require.Equal(t, "irregular verbs", item.Concept)
	require.Equal(t, 1, item.CorrectIndex)

	broken := completionServer(t, "not json", nil)
	gen, err = adapterout.NewOpenAIGenerator(adapterout.OpenAIConfig{APIKey: "test", BaseURL: broken.URL + "/v1"}, zerolog.Nop())
	require.NoError(t, err)
	_, err = gen.Quiz(context.Background(), "x")
	require.ErrorContains(t, err, "decode completion")

	_, err = adapterout.NewOpenAIGenerator(adapterout.OpenAIConfig{}, zerolog.Nop())
	require.Error(t, err)
}
