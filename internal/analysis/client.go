// Package analysis wraps the generative-analysis service. The service is
// treated as unreliable: it may time out, error, or hand back output we can
// not parse. Every failure funnels through SafeDefault so the caller always
// gets a classification that routes toward a human.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/extract"
)

// Intent labels the analysis service is expected to produce.
const (
	IntentInterested  = "interested"
	IntentRejection   = "rejection"
	IntentAgreement   = "agreement"
	IntentNegotiation = "negotiation"
	IntentQuestion    = "question"
	IntentUnknown     = "unknown"
)

// Classification is the oracle's verdict on one reply, merged with the
// locally extracted terms.
type Classification struct {
	Intent                string        `json:"intent"`
	Sentiment             string        `json:"sentiment"`
	RiskLevel             string        `json:"risk_level"`
	ExtractedTerms        extract.Terms `json:"extracted_terms"`
	RecommendedAction     string        `json:"recommended_action"`
	ConfidenceScore       float64       `json:"confidence_score"`
	RequiresHumanApproval bool          `json:"requires_human_approval"`
	Reason                string        `json:"reason,omitempty"`
}

// SafeDefault is the single fallback classification used on any analysis
// failure. It always escalates.
func SafeDefault(reason string, terms extract.Terms) Classification {
	return Classification{
		Intent:                IntentUnknown,
		Sentiment:             terms.Sentiment,
		RiskLevel:             "unknown",
		ExtractedTerms:        terms,
		RecommendedAction:     "escalate",
		ConfidenceScore:       0,
		RequiresHumanApproval: true,
		Reason:                reason,
	}
}

// Context gives the oracle the conversational situation of the reply.
type Context struct {
	Stage        string `json:"stage"`
	CampaignName string `json:"campaign_name"`
	CreatorName  string `json:"creator_name"`
	Round        int    `json:"round"`
}

// Analyzer is the surface the conversation pipeline depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string, convCtx Context) (Classification, error)
}

// Client is an HTTP client for the analysis service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

type analyzeRequest struct {
	Text    string  `json:"text"`
	Context Context `json:"context"`
}

type analyzeResponse struct {
	Intent                string  `json:"intent"`
	Sentiment             string  `json:"sentiment"`
	RiskLevel             string  `json:"risk_level"`
	RecommendedAction     string  `json:"recommended_action"`
	ConfidenceScore       float64 `json:"confidence_score"`
	RequiresHumanApproval bool    `json:"requires_human_approval"`
}

// Analyze classifies text via the analysis service. The extracted terms are
// computed locally and attached to the result; the service never sees them.
func (c *Client) Analyze(ctx context.Context, text string, convCtx Context) (Classification, error) {
	terms := extract.Extract(text)

	body, err := json.Marshal(analyzeRequest{Text: text, Context: convCtx})
	if err != nil {
		return SafeDefault("marshal request: "+err.Error(), terms), err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return SafeDefault("build request: "+err.Error(), terms), err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("analysis request failed", zap.Error(err))
		return SafeDefault("analysis request failed: "+err.Error(), terms), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(raw))
		c.logger.Warn("analysis service error", zap.Int("status", resp.StatusCode))
		return SafeDefault(err.Error(), terms), err
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("analysis response unparseable", zap.Error(err))
		return SafeDefault("unparseable analysis response: "+err.Error(), terms), err
	}

	if out.Intent == "" {
		err := fmt.Errorf("analysis response missing intent")
		return SafeDefault(err.Error(), terms), err
	}

	return Classification{
		Intent:                out.Intent,
		Sentiment:             out.Sentiment,
		RiskLevel:             out.RiskLevel,
		ExtractedTerms:        terms,
		RecommendedAction:     out.RecommendedAction,
		ConfidenceScore:       out.ConfidenceScore,
		RequiresHumanApproval: out.RequiresHumanApproval,
	}, nil
}

var _ Analyzer = (*Client)(nil)
