package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ztbench/internal/model"
)

func scoringServer(t *testing.T, status int, body string) (*httptest.Server, *ScoreRequest) {
	t.Helper()
	var got ScoreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai/risk_score", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestHTTPScorerSuccess(t *testing.T) {
	srv, got := scoringServer(t, http.StatusOK, `{"risk_score": 0.37}`)
	s := NewHTTPScorer(srv.URL+"/ai/risk_score", srv.Client())

	score, status, err := s.Score(context.Background(), Features{0.3, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.37, score)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, got.Features, FeatureWidth)
	assert.Equal(t, 0.3, got.Features[0])
}

func TestHTTPScorerFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"risk_score": 0.1}`},
		{"not json", http.StatusOK, `<html>`},
		{"missing field", http.StatusOK, `{"score": 0.1}`},
		{"string score", http.StatusOK, `{"risk_score": "low"}`},
		{"array body", http.StatusOK, `[0.1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := scoringServer(t, tt.status, tt.body)
			s := NewHTTPScorer(srv.URL+"/ai/risk_score", srv.Client())

			_, _, err := s.Score(context.Background(), Features{})
			assert.Error(t, err)

			score, status := NewOracle(s).Score(context.Background(), Features{}, model.ProfileHigh)
			assert.Equal(t, 0.9, score)
			assert.Equal(t, model.StatusFallback, status)
		})
	}
}

func TestHTTPScorerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	score, status := NewOracle(NewHTTPScorer(url+"/ai/risk_score", nil)).Score(context.Background(), Features{}, model.ProfileLow)
	assert.Equal(t, 0.1, score)
	assert.Equal(t, model.StatusFallback, status)
}

func TestNewHTTPScorerDefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewHTTPScorer("", nil).endpoint)
}
