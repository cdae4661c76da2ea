package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/devportal/internal/adapter/mail"
	"github.com/neomorfeo/devportal/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

const emailMaxAttempts = 5

// EmailJobArgs carries a fully rendered email. River serializes it as JSON
// into its job table, so the worker never re-renders or queries anything.
type EmailJobArgs struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	FromName string `json:"from_name"`
	HTMLBody string `json:"html_body"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EmailJobArgs) Kind() string { return "email.send" }

// InsertOpts bounds delivery retries.
func (EmailJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: emailMaxAttempts}
}

func (a EmailJobArgs) email() domain.Email {
	return domain.Email{To: a.To, Subject: a.Subject, FromName: a.FromName, HTMLBody: a.HTMLBody}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing email jobs.
// Administrator notices go to adminEmail.
type Notifier struct {
	client     *Client
	adminEmail string
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client, adminEmail string) *Notifier {
	return &Notifier{client: client, adminEmail: adminEmail}
}

// Send enqueues the email. Delivery happens asynchronously with retries.
func (n *Notifier) Send(ctx context.Context, e domain.Email) error {
	_, err := n.client.Insert(ctx, EmailJobArgs{
		To:       e.To,
		Subject:  e.Subject,
		FromName: e.FromName,
		HTMLBody: e.HTMLBody,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing email job: %w", err)
	}
	return nil
}

// ApproveVendor asks the administrator to approve a newly signed-up vendor.
func (n *Notifier) ApproveVendor(ctx context.Context, vendorID, name string, requester domain.Contact) error {
	body, err := mail.VendorApprovalBody(vendorID, name, requester)
	if err != nil {
		return err
	}
	return n.sendAdmin(ctx, fmt.Sprintf("Vendor %s awaits approval", vendorID), body)
}

// ApproveJoinVendor asks the administrator to approve a join request.
func (n *Notifier) ApproveJoinVendor(ctx context.Context, req domain.JoinRequest) error {
	body, err := mail.JoinApprovalBody(req)
	if err != nil {
		return err
	}
	return n.sendAdmin(ctx, fmt.Sprintf("%s asks to join vendor %s", req.Email, req.Vendor), body)
}

func (n *Notifier) sendAdmin(ctx context.Context, subject, body string) error {
	if n.adminEmail == "" {
		slog.WarnContext(ctx, "no administrator email configured, dropping notice", "subject", subject)
		return nil
	}
	return n.Send(ctx, domain.Email{
		To:       n.adminEmail,
		Subject:  subject,
		FromName: "Developer Portal",
		HTMLBody: body,
	})
}
