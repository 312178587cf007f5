package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// DefaultEndpoint is where the scoring service listens by default.
const DefaultEndpoint = "http://127.0.0.1:5000/ai/risk_score"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 64 << 10

// ResponseSchema is the JSON schema a scoring response must satisfy.
const ResponseSchema = `{
  "type": "object",
  "required": ["risk_score"],
  "properties": {
    "risk_score": {"type": "number"}
  }
}`

// ScoreRequest is the JSON body posted to the scoring service.
type ScoreRequest struct {
	Features []float64 `json:"features"`
}

// ScoreResponse is the JSON body returned by the scoring service.
type ScoreResponse struct {
	RiskScore float64 `json:"risk_score"`
}

var (
	compiledSchema  *jsonschema.Schema
	compileErr      error
	compileSchemaMu sync.Once
)

func responseSchema() (*jsonschema.Schema, error) {
	compileSchemaMu.Do(func() {
		compiledSchema, compileErr = jsonschema.NewCompiler().Compile([]byte(ResponseSchema))
	})
	return compiledSchema, compileErr
}

// HTTPScorer posts feature vectors to a JSON scoring endpoint.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPScorer creates a scorer for endpoint. A nil client uses a fresh
// http.Client; the Oracle bounds each call through the request context.
func NewHTTPScorer(endpoint string, client *http.Client) *HTTPScorer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPScorer{endpoint: endpoint, client: client}
}

// Score implements Scorer.
func (s *HTTPScorer) Score(ctx context.Context, features Features) (float64, int, error) {
	body, err := json.Marshal(ScoreRequest{Features: features.Slice()})
	if err != nil {
		return 0, 0, fmt.Errorf("marshal features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, resp.StatusCode, fmt.Errorf("risk service returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("read response: %w", err)
	}

	schema, err := responseSchema()
	if err != nil {
		return 0, 0, fmt.Errorf("compile response schema: %w", err)
	}
	if result := schema.ValidateJSON(data); !result.IsValid() {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, result.Errors)
	}

	var out ScoreResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out.RiskScore, resp.StatusCode, nil
}
