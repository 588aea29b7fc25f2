package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"bookingpro-backend/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Texter delivers short messages and reports the channel it used.
type Texter interface {
	Send(ctx context.Context, phone, body string) (channel string, err error)
}

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(s *config.Settings) *SMTPMailer {
	m := &SMTPMailer{
		addr: s.SMTP.Host + ":" + strconv.Itoa(s.SMTP.Port),
		from: s.FromEmail,
	}
	if s.SMTP.Username != "" {
		m.auth = smtp.PlainAuth("", s.SMTP.Username, s.SMTP.Password, s.SMTP.Host)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, buildMessage(m.from, msg))
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// buildMessage renders a plain-text message. Header values are flattened to
// one line since subjects carry customer-supplied names.
func buildMessage(from string, msg Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerBreaks.Replace(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerBreaks.Replace(msg.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", headerBreaks.Replace(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of delivering them. Used when
// no SMTP host is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, msg Email) error {
	m.Logger.Info("email not delivered, no SMTP host configured",
		"to", msg.To, "subject", msg.Subject)
	return nil
}

type TwilioTexter struct {
	client         *twilio.RestClient
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioTexter(s *config.Settings) *TwilioTexter {
	return &TwilioTexter{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: s.Twilio.AccountSID,
			Password: s.Twilio.AuthToken,
		}),
		phoneNumber:    s.Twilio.PhoneNumber,
		whatsAppNumber: s.Twilio.WhatsAppNumber,
	}
}

// Send uses WhatsApp for E.164 numbers when a WhatsApp sender is set,
// plain SMS otherwise.
func (t *TwilioTexter) Send(ctx context.Context, phone, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)

	channel := "sms"
	if strings.HasPrefix(phone, "+") && t.whatsAppNumber != "" {
		channel = "whatsapp"
		params.SetTo("whatsapp:" + phone)
		params.SetFrom("whatsapp:" + t.whatsAppNumber)
	} else {
		params.SetTo(phone)
		params.SetFrom(t.phoneNumber)
	}

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return channel, err
	}
	return channel, nil
}
