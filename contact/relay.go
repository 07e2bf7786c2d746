package contact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"flavourkitchen/logger"
	"flavourkitchen/mail"
	"flavourkitchen/metrics"
)

// Messages returned to the submitter. Provider and configuration details are
// only ever logged.
const (
	MsgInvalid       = "All fields are required."
	MsgNotConfigured = "Email service is not configured. Please try again later."
	MsgSendFailed    = "Failed to send message. Please try again later."
	MsgUnexpected    = "An unexpected error occurred. Please try again later."
)

const subjectPrefix = "[Flavour Kitchen Contact] "

var (
	ErrNotConfigured = errors.New("email provider credential is not configured")
	ErrProvider      = errors.New("email provider rejected the message")
)

// Relay is the server side of the contact form: it re-checks a submission and
// forwards it as one email. The provider credential is read on every call, so
// a missing key is reported per request rather than at startup.
type Relay struct {
	APIKey func() string
	From   string
	To     string
	// NewSender builds the provider client for a credential.
	NewSender func(apiKey string) mail.Sender
	Logger    *slog.Logger
}

// Deliver sends s. Errors are ErrInvalid, ErrNotConfigured or wrap
// ErrProvider.
func (r *Relay) Deliver(ctx context.Context, s Submission) error {
	log := logger.WithRequestID(ctx, r.logger()).With("submission_id", uuid.NewString())

	if !s.Complete() {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return ErrInvalid
	}

	apiKey := ""
	if r.APIKey != nil {
		apiKey = r.APIKey()
	}
	if apiKey == "" {
		metrics.ContactSubmissions.WithLabelValues("not_configured").Inc()
		log.ErrorContext(ctx, "RESEND_API_KEY is not configured")
		return ErrNotConfigured
	}

	html, err := RenderEmail(s)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues("error").Inc()
		return fmt.Errorf("render contact email: %w", err)
	}

	id, err := r.NewSender(apiKey).Send(ctx, mail.Message{
		From:    r.From,
		To:      []string{r.To},
		ReplyTo: s.Email,
		Subject: subjectPrefix + s.Subject,
		HTML:    html,
	})
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues("provider_error").Inc()
		log.ErrorContext(ctx, "send contact email", "error", err)
		return fmt.Errorf("%w: %w", ErrProvider, err)
	}

	metrics.ContactSubmissions.WithLabelValues("sent").Inc()
	log.InfoContext(ctx, "contact email sent", "message_id", id)
	return nil
}

// StatusFor maps a Deliver error to the HTTP status and message returned to
// the caller.
func StatusFor(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest, MsgInvalid
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, MsgNotConfigured
	case errors.Is(err, ErrProvider):
		return http.StatusInternalServerError, MsgSendFailed
	default:
		return http.StatusInternalServerError, MsgUnexpected
	}
}

// Send lets the server-rendered contact page drive a Form straight through
// the relay, without a round trip over HTTP.
func (r *Relay) Send(ctx context.Context, s Submission) error {
	err := r.Deliver(ctx, s)
	if err == nil {
		return nil
	}
	status, msg := StatusFor(err)
	return &ServerError{Status: status, Message: msg}
}

func (r *Relay) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

var emailTemplate = template.Must(template.New("contact-email").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #111827; border-bottom: 2px solid #fbbf24; padding-bottom: 12px;">New Contact Form Submission</h2>
  <table style="width: 100%; border-collapse: collapse; margin-top: 16px;">
    <tr>
      <td style="padding: 8px 12px; font-weight: 600; color: #374151; vertical-align: top; width: 100px;">Name</td>
      <td style="padding: 8px 12px; color: #111827;">{{.Name}}</td>
    </tr>
    <tr style="background-color: #fefdfb;">
      <td style="padding: 8px 12px; font-weight: 600; color: #374151; vertical-align: top;">Email</td>
      <td style="padding: 8px 12px; color: #111827;"><a href="mailto:{{.Email}}" style="color: #d97706;">{{.Email}}</a></td>
    </tr>
    <tr>
      <td style="padding: 8px 12px; font-weight: 600; color: #374151; vertical-align: top;">Subject</td>
      <td style="padding: 8px 12px; color: #111827;">{{.Subject}}</td>
    </tr>
  </table>
  <div style="margin-top: 20px; padding: 16px; background-color: #fefdfb; border-radius: 8px; border: 1px solid #fde68a;">
    <p style="font-weight: 600; color: #374151; margin: 0 0 8px 0;">Message</p>
    <p style="color: #111827; margin: 0; white-space: pre-wrap; line-height: 1.6;">{{.Message}}</p>
  </div>
  <p style="margin-top: 24px; font-size: 12px; color: #9ca3af;">Sent from the Flavour Kitchen contact form</p>
</div>
`))

// RenderEmail builds the HTML body for s. Every field is escaped by
// html/template.
func RenderEmail(s Submission) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
