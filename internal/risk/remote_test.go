package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devshield/devshield/internal/types"
)

func chatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func newTestRemote(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Remote {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRemote(RemoteOptions{Endpoint: srv.URL + "/", Deployment: "risk", APIKey: "k-123", Timeout: timeout})
}

var sample = types.Metadata{PatternType: "API Key", VariableName: "API_KEY", FileType: "py", Entropy: 4.7}

func TestRemote_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq chatRequest
	r := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path + "?" + req.URL.RawQuery
		gotKey = req.Header.Get("api-key")
		_ = json.NewDecoder(req.Body).Decode(&gotReq)
		fmt.Fprint(w, chatBody("```json\n{\"risk_score\": 85, \"action\": \"Block\", \"explanation\": \"looks real\"}\n```"))
	}, 0)

	a := r.Score(context.Background(), sample)
	assert.False(t, a.Degraded)
	assert.Equal(t, 85, a.RiskScore)
	assert.Equal(t, types.ActionBlock, a.Action)
	assert.Equal(t, "looks real", a.Explanation)
	assert.Equal(t, types.SevCritical, a.Severity)

	assert.Equal(t, "/openai/deployments/risk/chat/completions?api-version=2023-03-15-preview", gotPath)
	assert.Equal(t, "k-123", gotKey)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, systemPrompt, gotReq.Messages[0].Content)
	assert.Contains(t, gotReq.Messages[1].Content, `"pattern_type":"API Key"`)
	assert.Equal(t, 200, gotReq.MaxTokens)
}

func TestRemote_DefaultExplanation(t *testing.T) {
	r := newTestRemote(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, chatBody(`{"risk_score": 10, "action": "allow"}`))
	}, 0)
	a := r.Score(context.Background(), sample)
	assert.False(t, a.Degraded)
	assert.Equal(t, "No explanation provided.", a.Explanation)
}

func TestRemote_FailuresDegrade(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }, "status 500"},
		{"not json", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "<html>") }, "decode response"},
		{"no choices", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, `{"choices":[]}`) }, "no choices"},
		{"prose content", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, chatBody("I cannot help")) }, "no JSON object"},
		{"missing score", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, chatBody(`{"action":"warn"}`)) }, "missing risk_score"},
		{"score out of range", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, chatBody(`{"risk_score":150,"action":"warn"}`))
		}, "out of range"},
		{"bad action", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, chatBody(`{"risk_score":50,"action":"quarantine"}`))
		}, "unknown action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestRemote(t, tt.handler, 0).Score(context.Background(), sample)
			assert.True(t, a.Degraded)
			assert.Equal(t, 0, a.RiskScore)
			assert.Equal(t, types.ActionAllow, a.Action)
			assert.True(t, strings.HasPrefix(a.Explanation, "Error in risk assessment: "))
			assert.Contains(t, a.Explanation, tt.want)
		})
	}
}

func TestRemote_Timeout(t *testing.T) {
	done := make(chan struct{})
	r := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-done:
		}
	}, 50*time.Millisecond)
	defer close(done)

	start := time.Now()
	a := r.Score(context.Background(), sample)
	assert.True(t, a.Degraded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRemote_Unconfigured(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvDeployment, "")
	r := NewRemote(RemoteOptions{})
	assert.False(t, r.Configured())
	a := r.Score(context.Background(), sample)
	assert.True(t, a.Degraded)
	assert.Contains(t, a.Explanation, "required")
}

func TestRemote_EnvFallback(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvEndpoint, "https://example.openai.azure.com")
	t.Setenv(EnvDeployment, "dep")
	r := NewRemote(RemoteOptions{})
	assert.True(t, r.Configured())
	assert.Equal(t, DefaultTimeout, r.timeout)
}

func TestRemote_SatisfiesScorer(t *testing.T) {
	var _ Scorer = (*Remote)(nil)
	var _ Scorer = Local{}
}
