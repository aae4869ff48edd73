package notify

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"os"
)

const (
	EventNewComment  = "new_comment"
	EventNewInterest = "new_interest"
	EventNewUser     = "new_user"
)

// Event is the discriminated payload accepted by the relay. Which fields
// are meaningful depends on Type.
type Event struct {
	Type           string `json:"type"`
	UserName       string `json:"userName,omitempty"`
	UserEmail      string `json:"userEmail,omitempty"`
	ConcertName    string `json:"concertName,omitempty"`
	CommentContent string `json:"commentContent,omitempty"`
}

// Notifier dispatches activity notifications. Implementations must never
// block the caller's success path; failures are logged and swallowed.
type Notifier interface {
	Send(event Event)
}

// Mailer sends each event as an HTML email to a single configured
// notification address over SMTP.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
	Enabled  bool
}

func NewMailer() *Mailer {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	to := os.Getenv("NOTIFICATION_EMAIL")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != "" && to != ""
	if !enabled {
		log.Println("Mailer disabled: missing SMTP environment variables")
	}

	return &Mailer{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		To:       to,
		Enabled:  enabled,
	}
}

func (m *Mailer) Send(event Event) {
	var subject, body string

	switch event.Type {
	case EventNewComment:
		subject = fmt.Sprintf("💬 New Comment on %q", event.ConcertName)
		body = fmt.Sprintf(
			"<h1>New Comment Posted</h1>"+
				"<p><strong>Concert:</strong> %s</p>"+
				"<p><strong>Posted by:</strong> %s</p>"+
				"<blockquote>%s</blockquote>",
			html.EscapeString(event.ConcertName),
			html.EscapeString(event.UserName),
			html.EscapeString(event.CommentContent))
	case EventNewInterest:
		subject = fmt.Sprintf("🎫 Someone is interested in %q", event.ConcertName)
		body = fmt.Sprintf(
			"<h1>New Concert Interest</h1>"+
				"<p><strong>Concert:</strong> %s</p>"+
				"<p><strong>User:</strong> %s</p>",
			html.EscapeString(event.ConcertName),
			html.EscapeString(event.UserName))
	case EventNewUser:
		subject = fmt.Sprintf("🎉 New User Signed Up: %s", event.UserName)
		body = fmt.Sprintf(
			"<h1>New User Registration</h1>"+
				"<p><strong>Display Name:</strong> %s</p>"+
				"<p><strong>Email:</strong> %s</p>",
			html.EscapeString(event.UserName),
			html.EscapeString(event.UserEmail))
	default:
		log.Printf("Dropping notification with unknown type %q", event.Type)
		return
	}

	m.sendAsync(subject, body)
}

func (m *Mailer) sendAsync(subject, body string) {
	if !m.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
		addr := fmt.Sprintf("%s:%s", m.Host, m.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Showgoers <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", m.To, m.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, m.From, []string{m.To}, msg); err != nil {
			log.Printf("Failed to send notification email %q: %v", subject, err)
		}
	}()
}

// Nop discards every event. Used in tests and when notifications are not
// configured.
type Nop struct{}

func (Nop) Send(Event) {}
