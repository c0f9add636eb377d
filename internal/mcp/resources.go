package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) summary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	summary, err := h.ds.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	podium, err := h.ds.GetPodium(ctx, 3)
	if err != nil {
		h.log.Warn("summary: podium failed", "error", err)
	}

	var sessions []string
	if p, err := h.ds.GetProgram(ctx); err != nil {
		h.log.Warn("summary: program failed", "error", err)
	} else {
		sessions = p.SessionNames()
	}

	data, err := json.Marshal(map[string]any{
		"summary":  summary,
		"podium":   podium,
		"sessions": sessions,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
