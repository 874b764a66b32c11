package emailsending

import (
	"errors"
	"fmt"
	"log/slog"

	smtpclient "github.com/smirnypavel/edu-backend/pkg/smtp-client"
)

var (
	smtpClients     *smtpclient.SmtpClients
	frontendBaseURL string
)

func InitMessageSendingVariables(
	sc *smtpclient.SmtpClients,
	baseURL string,
) {
	smtpClients = sc
	frontendBaseURL = baseURL
}

func sendEmail(to string, subject string, content string) error {
	if smtpClients == nil {
		return errors.New("smtp clients not initialized")
	}
	return smtpClients.SendMail([]string{to}, subject, content, nil)
}

// SendVerificationEmail delivers the email address confirmation link issued
// at registration.
func SendVerificationEmail(toEmail string, token string) error {
	content := fmt.Sprintf(
		`<p>Welcome!</p>
<p>Please confirm your email address by opening the link below:</p>
<p><a href="%s/verify-email?token=%s">Confirm email address</a></p>
<p>If you did not create an account, you can ignore this message.</p>`,
		frontendBaseURL, token,
	)
	err := sendEmail(toEmail, "Confirm your email address", content)
	if err != nil {
		slog.Error("failed to send verification email", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// SendPasswordResetEmail delivers the reset link with the plaintext token.
// The link is only valid for a limited time.
func SendPasswordResetEmail(toEmail string, token string) error {
	content := fmt.Sprintf(
		`<p>A password reset was requested for your account.</p>
<p>Open the link below to choose a new password. The link expires in one hour:</p>
<p><a href="%s/reset-password?token=%s">Reset password</a></p>
<p>If you did not request this, you can ignore this message.</p>`,
		frontendBaseURL, token,
	)
	err := sendEmail(toEmail, "Password reset", content)
	if err != nil {
		slog.Error("failed to send password reset email", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// SendPasswordChangedNotification informs the account holder after a
// successful password reset.
func SendPasswordChangedNotification(toEmail string) error {
	content := fmt.Sprintf(
		`<p>The password of your account was just changed.</p>
<p>If this was not you, reset your password immediately at %s/forgot-password and contact support.</p>`,
		frontendBaseURL,
	)
	err := sendEmail(toEmail, "Your password was changed", content)
	if err != nil {
		slog.Error("failed to send password changed notification", slog.String("error", err.Error()))
		return err
	}
	return nil
}
