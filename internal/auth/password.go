package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarav-aiphi/Backend/internal/users"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/mail"
	"github.com/aarav-aiphi/Backend/pkg/security"
	"gorm.io/gorm"
)

const invalidResetTokenMessage = "Password reset token is invalid or has expired"

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, users.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	token, digest, err := security.GenerateResetToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	expires := s.now().UTC().Add(s.passwordCfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, digest, expires); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	if err := s.mailer.Send(ctx, resetMessage(user.Email, s.resetURL(token))); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error sending email")
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
	}
	user, err := s.users.FindByResetToken(ctx, security.HashResetToken(token), s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func (s *service) resetURL(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
}

func resetMessage(to, link string) mail.Message {
	return mail.Message{
		To:      []string{to},
		Subject: "Password Reset",
		Text: "You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n" +
			"Please click on the following link, or paste this into your browser to complete the process:\n\n" +
			link + "\n\n" +
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
	}
}
