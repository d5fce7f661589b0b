package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// judgeSchema has the shape of the verdict the grading judge asks for.
func judgeSchema() *Schema {
	return &Schema{
		Name:        "answer-judgement",
		Description: "Whether a learner's answer is an acceptable variant",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"acceptable": map[string]any{"type": "boolean"},
				"reason":     map[string]any{"type": "string"},
			},
			"required":             []any{"acceptable", "reason"},
			"additionalProperties": false,
		},
	}
}

type judgeVerdict struct {
	Acceptable bool   `json:"acceptable"`
	Reason     string `json:"reason"`
}

func judgeRequest(expected, given string) Request {
	return Request{
		System:    "You grade short answers in a language-learning quiz.",
		Messages:  []Message{{Role: RoleUser, Content: "Expected answers: " + expected + "\nLearner answer: " + given}},
		Schema:    judgeSchema(),
		MaxTokens: 256,
	}
}

// fakeAPI is a provider endpoint that records request bodies and answers
// with a fixed status and JSON body.
type fakeAPI struct {
	status int
	body   any

	mu     sync.Mutex
	paths  []string
	bodies []map[string]any
}

func (f *fakeAPI) start(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if raw, err := io.ReadAll(r.Body); err == nil {
			_ = json.Unmarshal(raw, &req)
		}

		f.mu.Lock()
		f.paths = append(f.paths, r.URL.Path)
		f.bodies = append(f.bodies, req)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		_ = json.NewEncoder(w).Encode(f.body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func (f *fakeAPI) lastBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.bodies, "no request reached the server")
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

func decodeVerdict(t *testing.T, resp *Response) judgeVerdict {
	t.Helper()
	require.NotNil(t, resp)
	var v judgeVerdict
	require.NoError(t, json.Unmarshal(resp.Content, &v))
	return v
}
