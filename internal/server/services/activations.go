package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/mailer"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

// ActivationService manages the one-time tokens that unlock a new account.
type ActivationService struct {
	tx        dbx.Transactor
	repos     repomanager.RepositoryManager
	ttl       time.Duration
	nowFn     func() time.Time
	mail      mailer.Sender
	mailFrom  string
	webOrigin string
}

func NewActivationService(tx dbx.Transactor, repos repomanager.RepositoryManager, ttl time.Duration,
	mail mailer.Sender, mailFrom, webOrigin string) *ActivationService {
	return &ActivationService{
		tx:        tx,
		repos:     repos,
		ttl:       ttl,
		nowFn:     time.Now,
		mail:      mail,
		mailFrom:  mailFrom,
		webOrigin: strings.TrimRight(webOrigin, "/"),
	}
}

// ErrActivationNotFound covers absent, expired, used and malformed tokens alike.
func ErrActivationNotFound() *common.Error {
	return common.NewNotFoundError(
		"The activation token was not found or has expired",
		"Sign up again",
	)
}

func errActivationNoLongerAllowed() *common.Error {
	return common.NewForbiddenError(
		"You can no longer use activation tokens",
		"Contact support",
	)
}

func parseTokenID(tokenID string) (uuid.UUID, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return uuid.Nil, ErrActivationNotFound()
	}
	return id, nil
}

func translateActivation(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return ErrActivationNotFound()
	default:
		return internalError(err)
	}
}

// Create issues a pending token for userID.
func (s *ActivationService) Create(ctx context.Context, userID uuid.UUID) (*models.ActivationToken, error) {
	now := clock(s.nowFn)
	token, err := s.repos.Activations(s.tx.Conn()).Create(ctx, &models.ActivationToken{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return nil, internalError(err)
	}
	return token, nil
}

func (s *ActivationService) FindOneValid(ctx context.Context, tokenID string) (*models.ActivationToken, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	token, err := s.repos.Activations(s.tx.Conn()).FindValidByID(ctx, id, clock(s.nowFn))
	return token, translateActivation(err)
}

// MarkUsed consumes the token. Only the first call for a token succeeds.
func (s *ActivationService) MarkUsed(ctx context.Context, tokenID string) (*models.ActivationToken, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	token, err := s.repos.Activations(s.tx.Conn()).MarkUsed(ctx, id, clock(s.nowFn))
	return token, translateActivation(err)
}

// ActivateUser replaces the features of the user with the activated set.
// Running it again leaves the user unchanged apart from updated_at.
func (s *ActivationService) ActivateUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.activateUser(ctx, s.tx.Conn(), userID)
}

func (s *ActivationService) activateUser(ctx context.Context, db dbx.DBTX, userID uuid.UUID) (*models.User, error) {
	user, err := s.repos.Users(db).SetFeatures(ctx, userID, features.Names(features.ActivatedUserFeatures...), clock(s.nowFn))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("The user was not found", "Check that the user exists")
		}
		return nil, internalError(err)
	}
	return user, nil
}

// Activate consumes the token and activates its owner in one transaction:
// either both writes land or neither does.
func (s *ActivationService) Activate(ctx context.Context, tokenID string) (*models.ActivationToken, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	var used *models.ActivationToken
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		now := clock(s.nowFn)
		tokens := s.repos.Activations(tx)

		token, err := tokens.FindValidByID(ctx, id, now)
		if err != nil {
			return translateActivation(err)
		}

		user, err := s.repos.Users(tx).FindByID(ctx, token.UserID)
		if err != nil {
			return internalError(fmt.Errorf("activation token owner: %w", err))
		}
		owner, err := features.Authenticated(user, nil)
		if err != nil {
			return internalError(err)
		}
		if ok, err := features.Can(owner, features.ReadActivationToken, nil); err != nil {
			return err
		} else if !ok {
			return errActivationNoLongerAllowed()
		}

		used, err = tokens.MarkUsed(ctx, id, now)
		if err != nil {
			return translateActivation(err)
		}

		_, err = s.activateUser(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return used, nil
}

// ActivationLink is the page the user opens to consume token.
func (s *ActivationService) ActivationLink(token *models.ActivationToken) string {
	return s.webOrigin + "/register/activate/" + token.ID.String()
}

// SendActivationEmail mails the activation link to the user.
func (s *ActivationService) SendActivationEmail(ctx context.Context, user *models.User, token *models.ActivationToken) error {
	msg := mailer.Message{
		From:    s.mailFrom,
		To:      user.Email,
		Subject: "Activate your Fintab account!",
		Text: fmt.Sprintf("%s, click the link below to activate your Fintab account!\n\n%s\n\nBest regards,\nThe Fintab team\n",
			user.Username, s.ActivationLink(token)),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return common.NewServiceError("The activation email could not be sent", err)
	}
	return nil
}
