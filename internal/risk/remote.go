package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devshield/devshield/internal/types"
)

const (
	apiVersion     = "2023-03-15-preview"
	systemPrompt   = "You are a security risk engine."
	DefaultTimeout = 10 * time.Second
)

// Environment variables consulted when RemoteOptions leaves a field empty.
const (
	EnvAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT_NAME"
)

// RemoteOptions configures a Remote scorer.
type RemoteOptions struct {
	Endpoint   string
	Deployment string
	APIKey     string
	Timeout    time.Duration
	Client     *http.Client
	Logger     logrus.FieldLogger
}

// Remote asks an Azure OpenAI chat-completions deployment to score a
// candidate secret. Every failure is logged and mapped to Degraded.
type Remote struct {
	endpoint   string
	deployment string
	apiKey     string
	timeout    time.Duration
	client     *http.Client
	log        logrus.FieldLogger
}

// NewRemote builds a Remote scorer, filling empty options from the
// environment.
func NewRemote(opts RemoteOptions) *Remote {
	r := &Remote{
		endpoint:   firstNonEmpty(opts.Endpoint, os.Getenv(EnvEndpoint)),
		deployment: firstNonEmpty(opts.Deployment, os.Getenv(EnvDeployment)),
		apiKey:     firstNonEmpty(opts.APIKey, os.Getenv(EnvAPIKey)),
		timeout:    opts.Timeout,
		client:     opts.Client,
		log:        opts.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	r.endpoint = strings.TrimRight(r.endpoint, "/")
	return r
}

// Configured reports whether endpoint, deployment and key are all known.
func (r *Remote) Configured() bool {
	return r.endpoint != "" && r.deployment != "" && r.apiKey != ""
}

// Score implements Scorer.
func (r *Remote) Score(ctx context.Context, m types.Metadata) types.RiskAssessment {
	a, err := r.assess(ctx, m)
	if err != nil {
		r.log.WithError(err).WithField("pattern_type", m.PatternType).Warn("remote risk scorer unavailable")
		return Degraded(err.Error())
	}
	return a
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type remoteVerdict struct {
	RiskScore   *float64 `json:"risk_score"`
	Action      *string  `json:"action"`
	Explanation *string  `json:"explanation"`
}

func (r *Remote) assess(ctx context.Context, m types.Metadata) (types.RiskAssessment, error) {
	if !r.Configured() {
		return types.RiskAssessment{}, errors.New("azure openai api key, endpoint and deployment name are required")
	}
	meta, _ := json.Marshal(m)
	body, _ := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(string(meta))},
		},
		MaxTokens:   200,
		Temperature: 0.2,
	})

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", r.endpoint, r.deployment, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.RiskAssessment{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", r.apiKey)
	resp, err := r.client.Do(req)
	if err != nil {
		return types.RiskAssessment{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.RiskAssessment{}, fmt.Errorf("scorer status %d", resp.StatusCode)
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.RiskAssessment{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return types.RiskAssessment{}, errors.New("response has no choices")
	}
	return parseVerdict(cr.Choices[0].Message.Content)
}

func buildPrompt(metadata string) string {
	return "You are a security risk engine. Given the following metadata, " +
		"return a JSON with risk_score (0-100), action (block/warn/allow), and explanation.\n" +
		"Metadata: " + metadata
}

// parseVerdict extracts the JSON object from the model content, which may be
// wrapped in prose or a code fence.
func parseVerdict(content string) (types.RiskAssessment, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return types.RiskAssessment{}, errors.New("no JSON object in model content")
	}
	var v remoteVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return types.RiskAssessment{}, fmt.Errorf("parse model content: %w", err)
	}
	if v.RiskScore == nil {
		return types.RiskAssessment{}, errors.New("model content is missing risk_score")
	}
	score := int(*v.RiskScore)
	if *v.RiskScore < 0 || *v.RiskScore > 100 {
		return types.RiskAssessment{}, fmt.Errorf("risk_score %v out of range", *v.RiskScore)
	}
	if v.Action == nil {
		return types.RiskAssessment{}, errors.New("model content is missing action")
	}
	action := types.Action(strings.ToLower(strings.TrimSpace(*v.Action)))
	if action.Rank() == 0 {
		return types.RiskAssessment{}, fmt.Errorf("unknown action %q", *v.Action)
	}
	explanation := "No explanation provided."
	if v.Explanation != nil && *v.Explanation != "" {
		explanation = *v.Explanation
	}
	sev, conf := SeverityFor(score)
	return types.RiskAssessment{
		RiskScore:   score,
		Severity:    sev,
		Confidence:  conf,
		Action:      action,
		Explanation: explanation,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
