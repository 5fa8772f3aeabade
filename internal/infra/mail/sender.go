package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/davronx1/leadgate/internal/entity"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

var decisionTmpl = template.Must(template.New("decision").Parse(`
<h2>Lead {{.Status}}</h2>
<p><b>Name:</b> {{.FullName}}<br>
<b>Phone:</b> {{.Phone}}<br>
<b>Location:</b> {{.Location}}{{if .CompanyName}}<br>
<b>Company:</b> {{.CompanyName}}{{end}}</p>
<p><b>Decided by:</b> {{.DecidedBy}}{{if .RejectionReason}}<br>
<b>Reason:</b> {{.RejectionReason}}{{end}}</p>
`))

// SendDecision emails the sales inbox a copy of a decided lead.
func (s *EmailSender) SendDecision(to string, lead *entity.Lead) error {
	var body bytes.Buffer
	if err := decisionTmpl.Execute(&body, lead); err != nil {
		return fmt.Errorf("render decision email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lead %s: %s", lead.Status, lead.FullName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send decision email: %w", err)
	}
	return nil
}
