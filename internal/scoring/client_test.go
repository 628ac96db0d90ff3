package scoring_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/observability"
	"github.com/spec-kit/dispatch-service/internal/scoring"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

func newClient(baseURL string) (*scoring.Client, *observability.Metrics) {
	metrics := observability.NewMetrics()
	cfg := config.ScoringConfig{
		BaseURL:              baseURL,
		AssignTimeoutSeconds: 2,
		SingleTimeoutSeconds: 2,
		BatchTimeoutSeconds:  2,
	}
	return scoring.NewClient(cfg, zap.NewNop(), metrics), metrics
}

func TestAssignOneSuccess(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai/assign", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"selected_engineer":     "Andika Prasetya",
				"assignment_score":      0.87,
				"cri_analysis":          map[string]any{"cri_normalized": 0.42, "risk_level": "medium"},
				"tsm_analysis":          map[string]any{"tsm_score": 0.91},
				"recommendation_reason": "best skill match",
				"top_candidates": []map[string]any{
					{"engineer": "Andika Prasetya", "tsm_score": 0.91},
					{"engineer": "Rina Oktaviani", "tsm_score": 0.85},
				},
			},
		})
	}))
	defer server.Close()

	client, metrics := newClient(server.URL)
	result, err := client.AssignOne(context.Background(), "database is slow", "Database Issue", "high", 0)
	require.NoError(t, err)

	assert.Equal(t, "Andika Prasetya", result.SelectedEngineer)
	assert.InDelta(t, 0.87, result.AssignmentScore, 0.001)
	require.NotNil(t, result.CRIAnalysis)
	assert.Equal(t, "medium", result.CRIAnalysis.RiskLevel)
	require.NotNil(t, result.TSMAnalysis)
	assert.InDelta(t, 0.91, result.TSMAnalysis.TSMScore, 0.001)
	assert.Len(t, result.TopCandidates, 2)

	// urgency is normalized for the wire
	assert.Equal(t, "High", captured["urgency"])
	assert.Equal(t, int64(1), metrics.GatewayCalls("assign", true))
}

func TestAssignOneGatewayDown(t *testing.T) {
	client, metrics := newClient("http://127.0.0.1:1")

	_, err := client.AssignOne(context.Background(), "text", "type", "low", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SERVICE_UNAVAILABLE"))
	assert.Equal(t, int64(1), metrics.GatewayCalls("assign", false))
}

func TestAssignOneTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client, _ := newClient(server.URL)
	_, err := client.AssignOne(context.Background(), "text", "type", "low", 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SERVICE_UNAVAILABLE"))
}

func TestAssignOneServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newClient(server.URL)
	_, err := client.AssignOne(context.Background(), "text", "type", "low", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SERVICE_UNAVAILABLE"))
}

func TestAssignOneMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, _ := newClient(server.URL)
	_, err := client.AssignOne(context.Background(), "text", "type", "low", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SCORING_REJECTED"))
}

func TestAssignOneRejectedWhenNoEngineer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"selected_engineer": ""},
		})
	}))
	defer server.Close()

	client, _ := newClient(server.URL)
	_, err := client.AssignOne(context.Background(), "text", "type", "low", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "SCORING_REJECTED"))
}

func TestRecommendBatch(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ai/recommend-batch", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"assignments": []map[string]any{
				{"requestId": "req_1", "engineerId": "Rina Oktaviani", "score": 0.8, "cri": 0.3, "risk_level": "low", "tsm_score": 0.82, "reason": "available"},
			},
			"total_processed": 1,
			"total_requests":  1,
		})
	}))
	defer server.Close()

	client, metrics := newClient(server.URL)
	out, err := client.RecommendBatch(context.Background(), []scoring.BatchTicket{
		{ID: "req_1", TicketText: "printer broken", RequestType: "Hardware", Urgency: "low"},
	}, true)
	require.NoError(t, err)

	require.Len(t, out.Assignments, 1)
	assert.Equal(t, "req_1", out.Assignments[0].RequestID)
	assert.Equal(t, "Rina Oktaviani", out.Assignments[0].EngineerID)
	assert.Equal(t, 1, out.TotalProcessed)
	assert.Equal(t, 1, out.TotalRequests)
	assert.Equal(t, true, captured["apply"])
	assert.Equal(t, int64(1), metrics.GatewayCalls("recommend_batch", true))
}

func TestRecommendBatchZeroTimeoutFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"assignments":     []map[string]any{},
			"total_processed": 0,
			"total_requests":  0,
		})
	}))
	defer server.Close()

	metrics := observability.NewMetrics()
	client := scoring.NewClient(config.ScoringConfig{BaseURL: server.URL}, zap.NewNop(), metrics)

	// an unset batch timeout must not produce an already-expired context
	out, err := client.RecommendBatch(context.Background(), []scoring.BatchTicket{
		{ID: "req_1", TicketText: "text", RequestType: "General Request", Urgency: "low"},
	}, false)
	require.NoError(t, err)
	assert.Empty(t, out.Assignments)
}

func TestNormalizeUrgency(t *testing.T) {
	assert.Equal(t, "High", scoring.NormalizeUrgency("HIGH"))
	assert.Equal(t, "Low", scoring.NormalizeUrgency("low"))
	assert.Equal(t, "Medium", scoring.NormalizeUrgency(""))
}
