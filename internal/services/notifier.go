package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

// Notifier pushes issue events to an external channel. The default is the
// no-op implementation picked at construction time, never discovered at
// call time.
type Notifier interface {
	IssueReported(ctx context.Context, issue models.Issue) error
	IssueCompleted(ctx context.Context, issue models.Issue) error
}

// NoopNotifier is the default when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) IssueReported(context.Context, models.Issue) error  { return nil }
func (NoopNotifier) IssueCompleted(context.Context, models.Issue) error { return nil }

// WebhookNotifier POSTs issue events to a configured webhook URL. Used for
// critical-issue alerts and completion notices.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	log    *zap.Logger
}

func NewWebhookNotifier(url string, log *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &WebhookNotifier{client: client, url: url, log: log}
}

type issueEvent struct {
	Event      string `json:"event"`
	IssueID    string `json:"issueId"`
	BranchID   string `json:"branchId"`
	Place      string `json:"place"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	AuthorName string `json:"authorName"`
}

func (n *WebhookNotifier) IssueReported(ctx context.Context, issue models.Issue) error {
	return n.post(ctx, "issue.reported", issue)
}

func (n *WebhookNotifier) IssueCompleted(ctx context.Context, issue models.Issue) error {
	return n.post(ctx, "issue.completed", issue)
}

func (n *WebhookNotifier) post(ctx context.Context, event string, issue models.Issue) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(issueEvent{
			Event:      event,
			IssueID:    issue.ID.Hex(),
			BranchID:   issue.BranchID,
			Place:      issue.Place(),
			Category:   string(issue.Category),
			Priority:   string(issue.Priority),
			Status:     string(issue.Status),
			AuthorName: issue.AuthorName,
		}).
		Post(n.url)
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	n.log.Debug("webhook delivered",
		zap.String("event", event),
		zap.String("issueId", issue.ID.Hex()),
	)

	return nil
}
