package report

import (
	"fmt"
	"mime/quotedprintable"
	"strings"
	"time"
)

// Email is a fully addressed HTML report ready to hand to sendmail.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// NewReportEmail addresses a rendered report body for the given platform and
// date.
func NewReportEmail(platform string, date time.Time, from string, to []string, body string) Email {
	return Email{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("%s Report for %s", strings.ToUpper(platform), date.Format("January 02, 2006")),
		Body:    body,
	}
}

// String renders the RFC 5322 message with a quoted-printable HTML part.
func (e Email) String() (string, error) {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", e.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	msg.WriteString("\r\n")

	encoder := quotedprintable.NewWriter(&msg)
	if _, err := encoder.Write([]byte(e.Body)); err != nil {
		return "", fmt.Errorf("failed to encode email body: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize email body: %w", err)
	}
	return msg.String(), nil
}
