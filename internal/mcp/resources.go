package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/setflow/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) plansResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		summaries = append(summaries, summarize(p))
	}
	return jsonContents(req.Params.URI, summaries)
}

func (h *handlers) dashboardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"stats":  stats.ComputeDashboard(plans),
		"recent": recentHistory(plans, 5),
	}
	return jsonContents(req.Params.URI, summary)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
