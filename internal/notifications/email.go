// Package notifications sends booking emails through a transactional mail API.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/utils"

	"go.uber.org/zap"
)

// EmailNotifier posts Brevo-style JSON payloads to APIURL.
type EmailNotifier struct {
	APIURL      string
	APIKey      string
	SenderEmail string
	SenderName  string
	Client      *http.Client
	Logger      *zap.Logger
}

type mailPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// Configured is false when the API key or the sender is missing.
func (n EmailNotifier) Configured() bool {
	return strings.TrimSpace(n.APIKey) != "" && strings.TrimSpace(n.SenderEmail) != "" && strings.TrimSpace(n.APIURL) != ""
}

func (n EmailNotifier) BookingConfirmed(ctx context.Context, notice models.BookingNotice) error {
	subject := fmt.Sprintf("Booking %s: %s", notice.Reference, notice.TourName)
	if notice.BookingStatus != models.BookingConfirmed {
		subject = fmt.Sprintf("Booking %s received: %s", notice.Reference, notice.TourName)
	}
	body, err := render(confirmationTmpl, notice)
	if err != nil {
		return err
	}
	return n.send(ctx, notice.ToEmail, notice.ToName, subject, body)
}

func (n EmailNotifier) TourReminder(ctx context.Context, notice models.BookingNotice) error {
	body, err := render(reminderTmpl, notice)
	if err != nil {
		return err
	}
	return n.send(ctx, notice.ToEmail, notice.ToName, "Reminder: "+notice.TourName+" is tomorrow", body)
}

func (n EmailNotifier) send(ctx context.Context, toEmail, toName, subject, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}
	if toName == "" {
		toName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload, err := json.Marshal(mailPayload{
		Sender:      map[string]string{"name": n.SenderName, "email": n.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", n.APIKey)

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail api status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	utils.OrNop(n.Logger).Info("mail sent", zap.String("subject", subject))
	return nil
}

// LogNotifier only logs. It is used when no mail API is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) BookingConfirmed(_ context.Context, notice models.BookingNotice) error {
	utils.OrNop(n.Logger).Info("booking notification (mail disabled)",
		zap.String("reference", notice.Reference),
		zap.String("status", string(notice.BookingStatus)),
	)
	return nil
}

func (n LogNotifier) TourReminder(_ context.Context, notice models.BookingNotice) error {
	utils.OrNop(n.Logger).Info("tour reminder (mail disabled)", zap.String("reference", notice.Reference))
	return nil
}

type noticeView struct {
	models.BookingNotice
	Date  string
	Time  string
	Total string
	Party int
}

func render(t *template.Template, n models.BookingNotice) (string, error) {
	var buf bytes.Buffer
	err := t.Execute(&buf, noticeView{
		BookingNotice: n,
		Date:          utils.FormatDate(n.TourDate),
		Time:          utils.TimeHM(n.StartTime),
		Total:         utils.FormatMoney(n.TotalPriceCents),
		Party:         n.ParticipantCount + 1,
	})
	if err != nil {
		return "", fmt.Errorf("render mail: %w", err)
	}
	return buf.String(), nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<p>Hello {{.ToName}},</p>
<p>Your booking <strong>{{.Reference}}</strong> for <strong>{{.TourName}}</strong> is {{.BookingStatus}}.</p>
<ul>
<li>Date: {{.Date}} {{.Time}}</li>
<li>Meeting point: {{.MeetingPoint}}</li>
<li>Party size: {{.Party}}</li>
<li>Total: {{.Total}}</li>
<li>Payment: {{.PaymentStatus}}</li>
</ul>`))

var reminderTmpl = template.Must(template.New("reminder").Parse(`<p>Hello {{.ToName}},</p>
<p>This is a reminder that <strong>{{.TourName}}</strong> starts tomorrow, {{.Date}} at {{.Time}}.</p>
<p>Meeting point: {{.MeetingPoint}}. Booking reference: {{.Reference}}.</p>`))
