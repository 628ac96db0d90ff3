package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dispatch-service/internal/config"
	"github.com/spec-kit/dispatch-service/internal/observability"
	apperrors "github.com/spec-kit/dispatch-service/pkg/util"
)

// AssignmentResult is the scoring service's recommendation for one ticket.
type AssignmentResult struct {
	SelectedEngineer string      `json:"selected_engineer"`
	AssignmentScore  float64     `json:"assignment_score"`
	CRIAnalysis      *CRIBlock   `json:"cri_analysis"`
	TSMAnalysis      *TSMBlock   `json:"tsm_analysis"`
	Reason           string      `json:"recommendation_reason"`
	TopCandidates    []Candidate `json:"top_candidates"`
}

// CRIBlock carries the complexity/risk metrics.
type CRIBlock struct {
	CRINormalized float64 `json:"cri_normalized"`
	RiskLevel     string  `json:"risk_level"`
}

// TSMBlock carries the skill-match metrics.
type TSMBlock struct {
	TSMScore float64 `json:"tsm_score"`
}

// Candidate is one ranked alternative from the recommendation.
type Candidate struct {
	Engineer string  `json:"engineer"`
	TSMScore float64 `json:"tsm_score"`
}

// BatchTicket is one ticket submitted for batch recommendation.
type BatchTicket struct {
	ID          string `json:"id"`
	TicketText  string `json:"ticket_text"`
	RequestType string `json:"request_type"`
	Urgency     string `json:"urgency"`
}

// BatchAssignment is one produced assignment from a batch recommendation.
type BatchAssignment struct {
	RequestID  string  `json:"requestId"`
	EngineerID string  `json:"engineerId"`
	Score      float64 `json:"score"`
	CRI        float64 `json:"cri"`
	RiskLevel  string  `json:"risk_level"`
	TSMScore   float64 `json:"tsm_score"`
	Reason     string  `json:"reason"`
}

// BatchRecommendation aggregates the batch call response.
type BatchRecommendation struct {
	Assignments    []BatchAssignment
	TotalProcessed int
	TotalRequests  int
}

// Gateway is the client contract to the external scoring service.
type Gateway interface {
	AssignOne(ctx context.Context, ticketText, requestType, urgency string, timeout time.Duration) (*AssignmentResult, error)
	RecommendBatch(ctx context.Context, tickets []BatchTicket, apply bool) (*BatchRecommendation, error)
}

// Client talks to the scoring service over HTTP.
type Client struct {
	baseURL    string
	cfg        config.ScoringConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewClient constructs a scoring gateway client.
func NewClient(cfg config.ScoringConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

type assignResponse struct {
	Success bool              `json:"success"`
	Data    *AssignmentResult `json:"data"`
	Error   string            `json:"error"`
}

type batchResponse struct {
	Success        bool              `json:"success"`
	Assignments    []BatchAssignment `json:"assignments"`
	TotalProcessed int               `json:"total_processed"`
	TotalRequests  int               `json:"total_requests"`
	Error          string            `json:"error"`
}

const (
	defaultAssignTimeout = 30 * time.Second
	defaultBatchTimeout  = 2 * time.Minute
)

// AssignOne requests a recommendation for a single ticket. A zero timeout
// falls back to the configured assign timeout.
func (c *Client) AssignOne(ctx context.Context, ticketText, requestType, urgency string, timeout time.Duration) (*AssignmentResult, error) {
	if timeout <= 0 {
		timeout = c.cfg.AssignTimeout()
	}
	if timeout <= 0 {
		timeout = defaultAssignTimeout
	}
	body := map[string]any{
		"ticket_text":  ticketText,
		"request_type": requestType,
		"urgency":      NormalizeUrgency(urgency),
	}

	var resp assignResponse
	if err := c.post(ctx, "/ai/assign", body, timeout, &resp); err != nil {
		c.metrics.RecordGatewayCall("assign", false)
		return nil, err
	}
	if !resp.Success || resp.Data == nil || resp.Data.SelectedEngineer == "" {
		c.metrics.RecordGatewayCall("assign", false)
		message := resp.Error
		if message == "" {
			message = "scoring service returned no assignment"
		}
		return nil, apperrors.NewDomainError("SCORING_REJECTED", message, http.StatusBadGateway, nil)
	}
	c.metrics.RecordGatewayCall("assign", true)
	return resp.Data, nil
}

// RecommendBatch scores many tickets in one call. The apply flag is a hint
// forwarded to the gateway; assignment writes always happen locally.
func (c *Client) RecommendBatch(ctx context.Context, tickets []BatchTicket, apply bool) (*BatchRecommendation, error) {
	for i := range tickets {
		tickets[i].Urgency = NormalizeUrgency(tickets[i].Urgency)
	}
	body := map[string]any{
		"requests": tickets,
		"apply":    apply,
	}

	timeout := c.cfg.BatchTimeout()
	if timeout <= 0 {
		timeout = defaultBatchTimeout
	}

	var resp batchResponse
	if err := c.post(ctx, "/ai/recommend-batch", body, timeout, &resp); err != nil {
		c.metrics.RecordGatewayCall("recommend_batch", false)
		return nil, err
	}
	if !resp.Success {
		c.metrics.RecordGatewayCall("recommend_batch", false)
		message := resp.Error
		if message == "" {
			message = "scoring service returned error"
		}
		return nil, apperrors.NewDomainError("SCORING_REJECTED", message, http.StatusBadGateway, nil)
	}
	c.metrics.RecordGatewayCall("recommend_batch", true)
	return &BatchRecommendation{
		Assignments:    resp.Assignments,
		TotalProcessed: resp.TotalProcessed,
		TotalRequests:  resp.TotalRequests,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, timeout time.Duration, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("scoring gateway unreachable", zap.String("path", path), zap.Error(err))
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewServiceUnavailable("scoring service connection lost", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return apperrors.NewServiceUnavailable(
			fmt.Sprintf("scoring service returned status %d", resp.StatusCode), nil)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewDomainError("SCORING_REJECTED",
			"scoring service returned malformed response", http.StatusBadGateway, nil)
	}
	return nil
}

// classifyTransportError maps connection and timeout failures to the typed
// SERVICE_UNAVAILABLE error. Both count as the gateway being unreachable;
// callers decide whether that degrades or surfaces as 503.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewServiceUnavailable("scoring service timed out", err)
	}
	return apperrors.NewServiceUnavailable("scoring service is not available", err)
}

// NormalizeUrgency lowers the value and uppercases the first letter to
// match the gateway vocabulary ("high" -> "High").
func NormalizeUrgency(urgency string) string {
	if urgency == "" {
		urgency = "medium"
	}
	lowered := strings.ToLower(urgency)
	return strings.ToUpper(lowered[:1]) + lowered[1:]
}
