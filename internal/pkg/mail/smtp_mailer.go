package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/clipgate/ClipGate/internal/pkg/env"
)

// SendMail sends an email via SMTP. The connection details come from the
// SMTP_* environment variables; errors are logged and returned.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendWelcomeMail sends the post-registration greeting. Delivery is best
// effort, callers fire it in a goroutine.
func SendWelcomeMail(to string, username string) error {
	subject := "Welcome to ClipGate"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>your ClipGate account is ready. Submit your first video and we will process and summarize it for you.</p><p>The free plan includes one free video credit, see our <a href=\"/pricing\">plans</a> for more.</p>",
		username,
	)
	return SendMail(to, subject, body)
}
