package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/neomorfeo/devportal/internal/config"
	"github.com/neomorfeo/devportal/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SendFunc matches net/smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers emails over SMTP. Retries are left to the caller's job queue.
type Mailer struct {
	cfg  config.SMTPConfig
	send SendFunc
}

// New creates a mailer for cfg. A nil send uses smtp.SendMail.
func New(cfg config.SMTPConfig, send SendFunc) *Mailer {
	if send == nil {
		send = smtp.SendMail
	}
	return &Mailer{cfg: cfg, send: send}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// Deliver sends the email. Without an SMTP host it only logs.
func (m *Mailer) Deliver(ctx context.Context, e domain.Email) error {
	if !m.Enabled() {
		slog.WarnContext(ctx, "SMTP not configured, skipping email send", "to", e.To, "subject", e.Subject)
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := m.send(addr, auth, m.cfg.From, []string{e.To}, BuildMessage(m.cfg.From, e)); err != nil {
		return fmt.Errorf("sending email to %s: %w", e.To, err)
	}

	slog.InfoContext(ctx, "email sent", "to", e.To, "subject", e.Subject)
	return nil
}

// headerValue folds CR and LF into spaces so a value cannot start a new header.
var headerValue = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// BuildMessage renders the RFC 5322 message for an HTML email.
func BuildMessage(from string, e domain.Email) []byte {
	var b bytes.Buffer
	if e.FromName != "" {
		fmt.Fprintf(&b, "From: %s <%s>\r\n", headerValue.Replace(e.FromName), headerValue.Replace(from))
	} else {
		fmt.Fprintf(&b, "From: %s\r\n", headerValue.Replace(from))
	}
	fmt.Fprintf(&b, "To: %s\r\n", headerValue.Replace(e.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue.Replace(e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTMLBody)
	return b.Bytes()
}

type vendorApprovalData struct {
	VendorID       string
	Name           string
	RequesterName  string
	RequesterEmail string
}

// VendorApprovalBody renders the administrator notice for a new vendor.
func VendorApprovalBody(vendorID, name string, requester domain.Contact) (string, error) {
	return render("vendor_approval.html", vendorApprovalData{
		VendorID:       vendorID,
		Name:           name,
		RequesterName:  requester.Name,
		RequesterEmail: requester.Email,
	})
}

// JoinApprovalBody renders the administrator notice for a join request.
func JoinApprovalBody(req domain.JoinRequest) (string, error) {
	return render("join_approval.html", req)
}

// Templates renders the user-facing email bodies.
type Templates struct{}

var _ domain.MessageRenderer = Templates{}

type invitationData struct {
	Vendor  string
	Inviter string
	Link    string
}

func (Templates) InvitationBody(vendorID, inviter, link string) (string, error) {
	return render("invitation.html", invitationData{Vendor: vendorID, Inviter: inviter, Link: link})
}

type removalData struct {
	Vendor string
	Actor  string
}

func (Templates) RemovalBody(vendorID, actor string) (string, error) {
	return render("removal.html", removalData{Vendor: vendorID, Actor: actor})
}

func (Templates) ApprovedBody(vendorID string) (string, error) {
	return render("approved.html", struct{ Vendor string }{vendorID})
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}
