// Package mail sends status notification emails to credit request applicants.
// Sending is skipped, with a log line, when SMTP is not configured.
package mail

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/models"
)

// template holds the localized subject and body for one status change.
type template struct {
	Subject string
	Body    string
}

// languageByCountry picks the notification language per country.
var languageByCountry = map[models.Country]string{
	models.CountryBrazil:   "pt",
	models.CountryPortugal: "pt",
	models.CountryItaly:    "it",
	models.CountrySpain:    "es",
	models.CountryMexico:   "es",
	models.CountryColombia: "es",
}

// statusTemplates maps language and status to a notification template. The
// body takes the applicant name and the request ID.
var statusTemplates = map[string]map[models.CreditRequestStatus]template{
	"es": {
		models.CreditRequestInReview: {
			Subject: "Su solicitud de crédito está en revisión",
			Body:    "Hola %s,\n\nSu solicitud de crédito #%d está siendo revisada por nuestro equipo. Le notificaremos cuando haya una decisión.\n",
		},
		models.CreditRequestApproved: {
			Subject: "Su solicitud de crédito fue aprobada",
			Body:    "Hola %s,\n\n¡Buenas noticias! Su solicitud de crédito #%d fue aprobada.\n",
		},
		models.CreditRequestRejected: {
			Subject: "Su solicitud de crédito fue rechazada",
			Body:    "Hola %s,\n\nLamentamos informarle que su solicitud de crédito #%d fue rechazada.\n",
		},
	},
	"pt": {
		models.CreditRequestInReview: {
			Subject: "Seu pedido de crédito está em análise",
			Body:    "Olá %s,\n\nSeu pedido de crédito #%d está sendo analisado pela nossa equipe. Avisaremos quando houver uma decisão.\n",
		},
		models.CreditRequestApproved: {
			Subject: "Seu pedido de crédito foi aprovado",
			Body:    "Olá %s,\n\nBoas notícias! Seu pedido de crédito #%d foi aprovado.\n",
		},
		models.CreditRequestRejected: {
			Subject: "Seu pedido de crédito foi recusado",
			Body:    "Olá %s,\n\nLamentamos informar que seu pedido de crédito #%d foi recusado.\n",
		},
	},
	"it": {
		models.CreditRequestInReview: {
			Subject: "La sua richiesta di credito è in revisione",
			Body:    "Salve %s,\n\nLa sua richiesta di credito #%d è in fase di revisione. La informeremo appena ci sarà una decisione.\n",
		},
		models.CreditRequestApproved: {
			Subject: "La sua richiesta di credito è stata approvata",
			Body:    "Salve %s,\n\nBuone notizie! La sua richiesta di credito #%d è stata approvata.\n",
		},
		models.CreditRequestRejected: {
			Subject: "La sua richiesta di credito è stata respinta",
			Body:    "Salve %s,\n\nSiamo spiacenti di informarla che la sua richiesta di credito #%d è stata respinta.\n",
		},
	},
}

// dialer abstracts gomail's Dialer for testing.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender delivers status notifications over SMTP.
type Sender struct {
	cfg    config.SMTPConfig
	dialer dialer
}

// NewSender constructs a Sender. A disabled SMTP config yields a Sender that
// skips delivery.
func NewSender(cfg config.SMTPConfig) *Sender {
	s := &Sender{cfg: cfg}
	if cfg.Enabled() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// templateFor resolves the template for a country and status. Statuses with
// no notification (pending, cancelled) return false.
func templateFor(country models.Country, status models.CreditRequestStatus) (template, bool) {
	lang, ok := languageByCountry[country]
	if !ok {
		lang = "es"
	}
	tpl, ok := statusTemplates[lang][status]
	return tpl, ok
}

// NotifyStatusChange emails the applicant about a status transition. Errors
// are logged and returned but callers treat delivery as best effort.
func (s *Sender) NotifyStatusChange(request *models.CreditRequest) error {
	if request.Email == "" {
		return nil
	}
	tpl, hasTemplate := templateFor(request.Country, request.Status)
	if !hasTemplate {
		return nil
	}
	if s.dialer == nil {
		log.WithFields(log.Fields{
			"credit_request_id": request.ID,
			"status":            request.Status,
		}).Info("mail: smtp not configured, skipping notification")
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", request.Email)
	msg.SetHeader("Subject", tpl.Subject)
	msg.SetBody("text/plain", fmt.Sprintf(tpl.Body, request.FullName, request.ID))

	if errSend := s.dialer.DialAndSend(msg); errSend != nil {
		log.WithError(errSend).WithField("credit_request_id", request.ID).Warn("mail: failed to send notification")
		return fmt.Errorf("mail: send notification: %w", errSend)
	}
	return nil
}
