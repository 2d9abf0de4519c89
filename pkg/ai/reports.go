package ai

import (
	"context"
	"fmt"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/mongo"
)

// SummarySource is satisfied by mongo.OrderRepository
type SummarySource interface {
	SpendingSummary(ctx context.Context, userID string) (*mongo.SpendingSummary, error)
}

type InsightsReport struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generatedAt"`
	AIEnabled   bool       `json:"aiEnabled"`
}

type ReportData struct {
	RawData    *mongo.SpendingSummary `json:"rawData"`
	AIInsights string                 `json:"aiInsights,omitempty"`
	Summary    string                 `json:"summary"`
	Error      string                 `json:"error,omitempty"`
}

type Reporter struct {
	client  *Client
	summary SummarySource
	now     func() time.Time
}

func NewReporter(client *Client, summary SummarySource) *Reporter {
	return &Reporter{client: client, summary: summary, now: time.Now}
}

// GenerateOrderInsights summarises a user's order history and, when the AI service is enabled,
// attaches a generated note. An AI failure is reported in the body, not as an error.
func (r *Reporter) GenerateOrderInsights(ctx context.Context, userID string) (*InsightsReport, error) {
	summary, err := r.summary.SpendingSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order history: %w", err)
	}

	report := &InsightsReport{
		Status:      "success",
		GeneratedAt: r.now(),
		AIEnabled:   r.client.IsEnabled(),
		Data: ReportData{
			RawData: summary,
			Summary: "Order history retrieved successfully",
		},
	}

	switch {
	case !r.client.IsEnabled():
		report.Data.Summary = "Raw order history (AI insights unavailable)"
	case summary.OrderCount == 0:
		report.Data.Summary = "No orders yet"
	default:
		insights, err := r.client.generateCompletion(ctx, OrderInsightsSystemPrompt, formatSpendingPrompt(summary))
		if err != nil {
			report.Data.Error = "AI analysis failed: " + err.Error()
		} else {
			report.Data.AIInsights = insights
			report.Data.Summary = "AI-generated order history insights"
		}
	}
	return report, nil
}
