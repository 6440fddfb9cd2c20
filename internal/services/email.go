package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/logger"
)

// EmailService sends transactional mail over SMTP. Sending is best effort:
// callers log failures and never fail the request that triggered the mail.
type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendWelcome greets a freshly registered account.
func (s *EmailService) SendWelcome(user *models.User) error {
	subject := "Welcome to GigLink"

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Welcome, %s!</h2>", user.FullName))
	if user.Role == models.RoleMusician {
		sb.WriteString("<p>Your musician account is ready. Complete your profile to start receiving booking requests.</p>")
	} else {
		sb.WriteString("<p>Your account is ready. Browse musicians and book your first gig.</p>")
	}
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">GigLink</p>")
	sb.WriteString("</body></html>")

	return s.send([]string{user.Email}, subject, sb.String())
}

// SendPaymentReceipt mails a receipt after a payment settles.
func (s *EmailService) SendPaymentReceipt(user *models.User, payment *models.Payment) error {
	subject := fmt.Sprintf("Payment receipt %s", payment.Reference)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Payment received</h2>")
	sb.WriteString("<table style=\"border-collapse: collapse;\">")

	rows := []struct{ label, value string }{
		{"Reference", payment.Reference},
		{"Amount", fmt.Sprintf("%.2f %s", payment.Amount, payment.Currency)},
		{"Purpose", payment.Purpose},
		{"Status", payment.Status},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>", r.label, r.value))
	}
	sb.WriteString("</table>")
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">GigLink</p>")
	sb.WriteString("</body></html>")

	return s.send([]string{user.Email}, subject, sb.String())
}

func (s *EmailService) send(to []string, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled || s.cfg.Host == "" {
		return nil
	}
	if len(to) == 0 {
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent mail to %v", to)
	return nil
}

func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}
