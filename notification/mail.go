package notification

import (
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"
)

type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string

	to   string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (t Mail) Notify(text string) {
	serverAddress := fmt.Sprintf(
		"%s:%d",
		t.smtpServerAddress,
		t.smtpServerPort)

	message := fmt.Sprintf(
		"To: \"User\" <%s>\r\nFrom: \"signalbot\" <%s>\r\nSubject: signalbot alert\r\n\r\n%s",
		t.to,
		t.from,
		text,
	)
	err := t.send(
		serverAddress,
		t.auth,
		t.from,
		[]string{t.to},
		[]byte(message))
	if err != nil {
		log.
			WithError(err).
			Errorf("notification/mail: couldnt send mail")
	}
}

type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string

	To       string
	From     string
	Password string
}

func NewMail(params MailParams) Mail {
	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth: smtp.PlainAuth(
			"",
			params.From,
			params.Password,
			params.SMTPServerAddress,
		),
		send: smtp.SendMail,
	}
}
