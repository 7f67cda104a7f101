package usecase

import (
	"context"
	"fmt"
	"strings"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"

	"github.com/go-playground/validator/v10"
)

type INewsletterUsecase interface {
	Subscribe(ctx context.Context, signup model.NewsletterSignup) error
}

type NewsletterUsecase struct {
	webhook         repository.INewsletterWebhook
	validate        *validator.Validate
	defaultDomain   string
	defaultLanguage string
}

func NewNewsletterUsecase(webhook repository.INewsletterWebhook, siteURL, language string) INewsletterUsecase {
	return &NewsletterUsecase{
		webhook:         webhook,
		validate:        validator.New(),
		defaultDomain:   hostOf(siteURL),
		defaultLanguage: language,
	}
}

func (u *NewsletterUsecase) Subscribe(ctx context.Context, signup model.NewsletterSignup) error {
	signup.Email = strings.TrimSpace(signup.Email)
	if err := u.validate.Var(signup.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: Bitte gib eine gültige E-Mail-Adresse ein", model.ErrInvalidInput)
	}
	if !signup.PrivacyAccepted {
		return fmt.Errorf("%w: Bitte akzeptiere die Datenschutzerklärung", model.ErrInvalidInput)
	}
	if signup.Domain == "" {
		signup.Domain = u.defaultDomain
	}
	if signup.Language == "" {
		signup.Language = u.defaultLanguage
	}

	if err := u.webhook.Subscribe(ctx, signup); err != nil {
		logger.GetLogger().WithField("error", err).Error("Newsletter signup failed")
		return err
	}
	logger.GetLogger().WithField("domain", signup.Domain).Info("Newsletter signup forwarded")
	return nil
}
