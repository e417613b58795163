package email

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// EmailService sends failed-login alerts to the site owner.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	to       string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		user:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		to:       os.Getenv("ALERT_EMAIL"),
		send:     smtp.SendMail,
	}
}

// Enabled reports whether SMTP and a recipient are configured.
func (e *EmailService) Enabled() bool {
	return e != nil && e.host != "" && e.to != ""
}

// SendLoginAlert mails the configured recipients about a failed login. It is a no-op when alerts are off.
func (e *EmailService) SendLoginAlert(siteTitle, ip, userAgent string, at time.Time) error {
	if !e.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("Failed admin login - %s", siteTitle)
	body := fmt.Sprintf(`
A login to the %s admin panel failed.

Time:       %s
IP:         %s
User-Agent: %s

If this was not you, consider changing the admin password.
`, siteTitle, at.Format("2006-01-02 15:04:05"), ip, userAgent)

	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, e.to, subject, body)

	var auth smtp.Auth
	if e.user != "" {
		auth = smtp.PlainAuth("", e.user, e.password, e.host)
	}
	port := e.port
	if port == "" {
		port = "587"
	}
	addr := fmt.Sprintf("%s:%s", e.host, port)

	recipients := strings.Split(e.to, ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}

	if err := e.send(addr, auth, e.from, recipients, []byte(message)); err != nil {
		return fmt.Errorf("send login alert: %w", err)
	}
	return nil
}
