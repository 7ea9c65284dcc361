package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recruit-cli/internal/model"
)

// Notifier delivers analysis results to the sheet-side webhook. Delivery is
// best effort: callers log and swallow errors, and never retry.
type Notifier interface {
	NotifyAnalysis(ctx context.Context, email string, a *model.Analysis) error
}

// WebhookNotifier sends the flattened analysis payload as a GET request with
// a data query parameter, which is what the Apps Script endpoint accepts.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier for the given endpoint URL.
func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    endpoint,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) NotifyAnalysis(ctx context.Context, email string, a *model.Analysis) error {
	payload := map[string]any{
		"email":      email,
		"rating":     a.Rating,
		"summary":    a.Summary,
		"strengths":  strings.Join(a.Strengths, "; "),
		"weaknesses": strings.Join(a.Weaknesses, "; "),
		"questions":  strings.Join(a.SuggestedQuestions, "; "),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "writeback: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		n.url+"?data="+url.QueryEscape(string(data)), nil)
	if err != nil {
		return eris.Wrap(err, "writeback: create request")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "writeback: send")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return eris.Errorf("writeback: http %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier is used when no write-back endpoint is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyAnalysis(context.Context, string, *model.Analysis) error {
	return nil
}
