package backendsvc

import (
	"context"
	"net/http"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

var _ gradebook.Assistant = (*Client)(nil)

func (c *Client) GenerateReport(ctx context.Context, text string) (string, error) {
	in := struct {
		Text string `json:"text"`
	}{Text: text}
	var out struct {
		Report string `json:"report"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/ai/generate-report", in, &out); err != nil {
		return "", err
	}
	return out.Report, nil
}

func (c *Client) Chat(ctx context.Context, req gradebook.ChatRequest) (string, error) {
	if req.History == nil {
		req.History = []gradebook.ChatMessage{}
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/ai/chat", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
