package usecase

import (
	"context"
	"fmt"
	"html"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/model"
	"github.com/vasapolrittideah/postly-api/shared/mailer"
)

// HTMLMailer sends HTML email.
type HTMLMailer interface {
	SendHTML(to []string, subject, htmlBody, textBody string) error
}

type welcomeMailNotifier struct {
	mailer HTMLMailer
}

// NewWelcomeMailNotifier sends a welcome email to every new user.
func NewWelcomeMailNotifier(m HTMLMailer) RegistrationNotifier {
	return &welcomeMailNotifier{mailer: m}
}

var _ HTMLMailer = (*mailer.Mailer)(nil)

func (n *welcomeMailNotifier) NotifyRegistered(_ context.Context, user *model.User) error {
	name := html.EscapeString(user.Username)

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your Postly account is ready. Log in with your username to start writing.</p>
		<p>Thank you,</p>
		<p>Postly Team</p>
	`, name)
	textBody := fmt.Sprintf("Hi %s,\n\nYour Postly account is ready. Log in with your username to start writing.\n", user.Username)

	return n.mailer.SendHTML([]string{user.Email}, "Welcome to Postly", htmlBody, textBody)
}
