package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/models"
)

type VerificationService struct {
	db      *gorm.DB
	mailer  Mailer
	ttl     time.Duration
	siteURL string
	now     func() time.Time
	log     zerolog.Logger
}

func NewVerificationService(conn *gorm.DB, mailer Mailer, ttl time.Duration, siteURL string, log zerolog.Logger) *VerificationService {
	return &VerificationService{
		db:      conn,
		mailer:  mailer,
		ttl:     ttl,
		siteURL: strings.TrimRight(siteURL, "/"),
		now:     time.Now,
		log:     log,
	}
}

// Issue replaces any outstanding token of user with a fresh one and mails the link.
func (s *VerificationService) Issue(ctx context.Context, user *models.User) (*models.EmailVerificationToken, error) {
	if user.EmailVerified {
		return nil, apperr.Validation("email is already verified")
	}
	token := &models.EmailVerificationToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.EmailVerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	link := s.siteURL + "/verify-email?token=" + url.QueryEscape(token.Token)
	s.mailer.SendVerificationEmail(user.Email, user.FullName, link, s.ttl.String())
	return token, nil
}

// Verify consumes token and marks its owner verified.
func (s *VerificationService) Verify(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Validation("token is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.EmailVerificationToken
		if err := tx.Where("token = ?", token).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("verification token")
			}
			return err
		}
		if t.Expired(s.now()) {
			// the expired row is kept; Issue replaces it on resend
			return apperr.Validation("verification token has expired")
		}
		if err := tx.Model(&models.User{}).Where("id = ?", t.UserID).Update("email_verified", true).Error; err != nil {
			return err
		}
		if err := tx.Delete(&t).Error; err != nil {
			return err
		}
		return tx.First(&user, "id = ?", t.UserID).Error
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation) {
			return nil, err
		}
		return nil, apperr.FromDB(err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return &user, nil
}
