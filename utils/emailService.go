package utils

import (
	"fmt"
	"html"
	"strings"
	"time"

	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers one HTML email. Tests may replace it.
var Mailer = sendgridMail

func sendgridMail(to, subject, htmlBody string) error {
	cfg := config.Current()
	if cfg.SendgridAPIKey == "" {
		logger.Log.Info("email not sent, sendgrid disabled", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(cfg.MailFromName, cfg.MailFrom)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)
	resp, err := sendgrid.NewSendClient(cfg.SendgridAPIKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendEmail sends htmlBody to every recipient and returns the first failure.
func SendEmail(to []string, subject string, htmlBody string) error {
	var firstErr error
	for _, addr := range to {
		if err := Mailer(addr, subject, htmlBody); err != nil {
			logger.Log.Error("email delivery failed", "to", addr, "subject", subject, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func sendAsync(to []string, subject, htmlBody string) {
	go func() {
		_ = SendEmail(to, subject, htmlBody)
	}()
}

func getEmailTemplate(title string, bodyContent string) string {
	name := html.EscapeString(config.Current().MailFromName)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #1E3A5F; padding: 24px; text-align: center; color: #FFFFFF; }
		.content { padding: 32px 28px; color: #1E3A5F; line-height: 1.6; }
		.quote { background: #EEF3F8; padding: 14px; border-left: 4px solid #1E3A5F; white-space: pre-wrap; }
		.footer { background-color: #F6F6F6; padding: 16px; text-align: center; font-size: 12px; color: #666666; }
		table { border-collapse: collapse; width: 100%%; }
		td, th { border-bottom: 1px solid #E0E0E0; padding: 6px; text-align: left; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">
			<h2>%s</h2>
			%s
		</div>
		<div class="footer">&copy; %d %s</div>
	</div>
</body>
</html>`, name, html.EscapeString(title), bodyContent, time.Now().Year(), name)
}

// SendWelcomeEmail greets a newly registered user.
func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your account is ready. Browse the catalog and enroll in a course to start learning.</p>`, html.EscapeString(name))
	sendAsync([]string{email}, "Welcome to "+config.Current().MailFromName, getEmailTemplate("Welcome!", body))
}

// SendEnrollmentEmail confirms an enrollment.
func SendEnrollmentEmail(email, userName, courseTitle string) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You are enrolled in <strong>%s</strong>. Your progress is saved as you go through the lessons.</p>`,
		html.EscapeString(userName), html.EscapeString(courseTitle))
	sendAsync([]string{email}, "Enrollment confirmed: "+courseTitle, getEmailTemplate("Enrollment confirmed", body))
}

// SendContactNotification tells the admin inbox about a new contact message.
// It does nothing when no admin address is configured.
func SendContactNotification(c *models.Contact) {
	admin := config.Current().AdminNotifyMail
	if admin == "" {
		return
	}
	body := fmt.Sprintf(`<p><strong>From:</strong> %s &lt;%s&gt;</p>
<p><strong>Subject:</strong> %s</p>
<div class="quote">%s</div>`,
		html.EscapeString(c.Name), html.EscapeString(c.Email),
		html.EscapeString(c.Subject), html.EscapeString(c.Message))
	sendAsync([]string{admin}, "New contact message: "+c.Subject, getEmailTemplate("New contact message", body))
}

// SendContactResponse mails the admin's reply to the person who wrote in.
func SendContactResponse(c *models.Contact) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thanks for getting in touch. Here is our reply to "%s":</p>
<div class="quote">%s</div>`,
		html.EscapeString(c.Name), html.EscapeString(c.Subject), html.EscapeString(c.AdminResponse))
	sendAsync([]string{c.Email}, "Re: "+c.Subject, getEmailTemplate("We replied to your message", body))
}

// DigestLine is one row of the daily admin digest.
type DigestLine struct {
	Label string
	Value string
}

// BuildDigestEmail renders the admin digest body.
func BuildDigestEmail(lines []DigestLine, contacts []models.Contact) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, l := range lines {
		fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>", html.EscapeString(l.Label), html.EscapeString(l.Value))
	}
	b.WriteString("</table>")
	if len(contacts) > 0 {
		b.WriteString("<h3>New contact messages</h3><ul>")
		for _, c := range contacts {
			fmt.Fprintf(&b, "<li>%s &lt;%s&gt;: %s</li>",
				html.EscapeString(c.Name), html.EscapeString(c.Email), html.EscapeString(c.Subject))
		}
		b.WriteString("</ul>")
	}
	return getEmailTemplate("Daily summary", b.String())
}
