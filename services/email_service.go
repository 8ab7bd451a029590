package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/drjulio/clinic-api/config"
	"github.com/drjulio/clinic-api/model"
)

// EmailService sends transactional mail via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USER,
		password: env.SMTP_PASS,
		from:     env.SMTP_FROM,
		appURL:   env.APP_URL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendCourseWelcome tells a payer their access is open. When the account was
// just provisioned, tempPassword is included so they can log in at all.
func (e *EmailService) SendCourseWelcome(to, name, courseTitle, accessURL, tempPassword string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping welcome email for %s (course %q)", to, courseTitle)
		return fmt.Errorf("SMTP not configured")
	}

	subject := fmt.Sprintf("Seu acesso ao curso %s está liberado", courseTitle)
	body := e.buildWelcomeBody(name, courseTitle, accessURL, tempPassword)

	return e.sendEmail(to, subject, body)
}

// SendExpirationReminder warns a student their access window closes soon
func (e *EmailService) SendExpirationReminder(enrollment *model.CourseEnrollment) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}
	if enrollment.AccessEnd == nil {
		return fmt.Errorf("enrollment %d has no access window", enrollment.ID)
	}

	subject := fmt.Sprintf("Seu acesso ao curso %s expira em breve", enrollment.Course.Title)
	body := e.buildReminderBody(enrollment.Name, enrollment.Course.Title, *enrollment.AccessEnd)

	return e.sendEmail(enrollment.Email, subject, body)
}

func (e *EmailService) buildWelcomeBody(name, courseTitle, accessURL, tempPassword string) string {
	if name == "" {
		name = "Aluno"
	}
	if accessURL == "" {
		accessURL = e.appURL
	}

	credentials := ""
	if tempPassword != "" {
		credentials = fmt.Sprintf(`
        <p>Criamos uma conta para você. Use a senha temporária abaixo no primeiro acesso e troque-a em seguida:</p>
        <p class="credential">%s</p>`, tempPassword)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Acesso liberado</title>
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 560px; margin: 0 auto; padding: 24px; }
        .button { display: inline-block; padding: 12px 24px; background: #2d6a4f; color: #fff; text-decoration: none; border-radius: 4px; }
        .credential { font-family: monospace; font-size: 18px; background: #f4f4f4; padding: 8px 12px; display: inline-block; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Olá, %s!</h2>
        <p>Seu pagamento foi confirmado e o acesso ao curso <strong>%s</strong> já está liberado.</p>%s
        <p><a class="button" href="%s">Acessar o curso</a></p>
        <p>Bons estudos!</p>
    </div>
</body>
</html>`, name, courseTitle, credentials, accessURL)
}

func (e *EmailService) buildReminderBody(name, courseTitle string, accessEnd time.Time) string {
	if name == "" {
		name = "Aluno"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Acesso expira em breve</title>
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 560px; margin: 0 auto; padding: 24px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Olá, %s!</h2>
        <p>Seu acesso ao curso <strong>%s</strong> expira em <strong>%s</strong>.</p>
        <p>Aproveite para concluir as aulas e baixar seus certificados antes dessa data.</p>
    </div>
</body>
</html>`, name, courseTitle, accessEnd.Format("02/01/2006"))
}

func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	// Build the email message with proper headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("Dr. Julio Cursos <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}
