package mail

import (
	"strings"
	"testing"

	"gopkg.in/gomail.v2"

	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/models"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestTemplateLanguageByCountry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		country models.Country
		want    string
	}{
		{models.CountryBrazil, "Olá"},
		{models.CountryPortugal, "Olá"},
		{models.CountryItaly, "Salve"},
		{models.CountrySpain, "Hola"},
		{models.CountryMexico, "Hola"},
		{models.CountryColombia, "Hola"},
	}
	for _, tc := range cases {
		tpl, ok := templateFor(tc.country, models.CreditRequestApproved)
		if !ok {
			t.Fatalf("templateFor(%s, approved) not found", tc.country)
		}
		if !strings.HasPrefix(tpl.Body, tc.want) {
			t.Fatalf("templateFor(%s) body = %q, want prefix %q", tc.country, tpl.Body, tc.want)
		}
	}
}

func TestNoTemplateForPendingAndCancelled(t *testing.T) {
	t.Parallel()

	if _, ok := templateFor(models.CountrySpain, models.CreditRequestPending); ok {
		t.Fatal("templateFor(pending) = true, want false")
	}
	if _, ok := templateFor(models.CountrySpain, models.CreditRequestCancelled); ok {
		t.Fatal("templateFor(cancelled) = true, want false")
	}
}

func TestNotifyStatusChangeSends(t *testing.T) {
	t.Parallel()

	dialer := &fakeDialer{}
	sender := &Sender{
		cfg:    config.SMTPConfig{Host: "smtp.example.com", Username: "mailer", From: "noreply@example.com"},
		dialer: dialer,
	}
	request := &models.CreditRequest{
		ID:       42,
		FullName: "Maria Silva",
		Email:    "maria@example.com",
		Country:  models.CountryBrazil,
		Status:   models.CreditRequestApproved,
	}

	if err := sender.NotifyStatusChange(request); err != nil {
		t.Fatalf("NotifyStatusChange() error = %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("len(sent) = %d, want 1", len(dialer.sent))
	}
	msg := dialer.sent[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "maria@example.com" {
		t.Fatalf("To = %v, want applicant email", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "aprovado") {
		t.Fatalf("Subject = %v, want Portuguese approval subject", got)
	}
}

func TestNotifyStatusChangeSkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	sender := NewSender(config.SMTPConfig{})
	request := &models.CreditRequest{
		ID:       7,
		FullName: "Juan Pérez",
		Email:    "juan@example.com",
		Country:  models.CountrySpain,
		Status:   models.CreditRequestRejected,
	}

	if err := sender.NotifyStatusChange(request); err != nil {
		t.Fatalf("NotifyStatusChange() error = %v, want nil skip", err)
	}
}

func TestNotifyStatusChangeSkipsWithoutEmail(t *testing.T) {
	t.Parallel()

	dialer := &fakeDialer{}
	sender := &Sender{cfg: config.SMTPConfig{Host: "h", Username: "u"}, dialer: dialer}
	request := &models.CreditRequest{ID: 9, Country: models.CountrySpain, Status: models.CreditRequestApproved}

	if err := sender.NotifyStatusChange(request); err != nil {
		t.Fatalf("NotifyStatusChange() error = %v", err)
	}
	if len(dialer.sent) != 0 {
		t.Fatalf("len(sent) = %d, want 0", len(dialer.sent))
	}
}
