package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

// CredentialService verifies email and password pairs and hashes passwords.
type CredentialService struct {
	tx        dbx.Transactor
	repos     repomanager.RepositoryManager
	cost      int
	dummyHash []byte
}

// NewCredentialService prepares a dummy hash at the configured cost, compared
// against when the email is unknown so both failure paths do the same work.
func NewCredentialService(tx dbx.Transactor, repos repomanager.RepositoryManager, cost int) *CredentialService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("fintab-no-such-user"), cost)
	if err != nil {
		panic(err)
	}
	return &CredentialService{tx: tx, repos: repos, cost: cost, dummyHash: dummy}
}

func errCredentialsMismatch() *common.Error {
	return common.NewUnauthorizedError(
		"The authentication data does not match",
		"Check that the submitted data is correct",
	)
}

// HashPassword returns the bcrypt hash of password.
func (s *CredentialService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Authenticate returns the user owning email when password matches. Unknown
// email and wrong password fail with the same unauthorized error.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repos.Users(s.tx.Conn()).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, errCredentialsMismatch()
		}
		return nil, internalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errCredentialsMismatch()
	}
	return user, nil
}
