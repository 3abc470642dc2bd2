package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/models"
	"github.com/dmitrijs2005/fintab/internal/server/repositories/repomanager"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in CreateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 30), validation.Match(usernamePattern)),
		validation.Field(&in.Email, validation.Required, validation.Length(6, 254), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (in UpdateUserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.NilOrNotEmpty, validation.Length(3, 30), validation.Match(usernamePattern)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, validation.Length(6, 254), is.Email),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.Length(8, 72)),
	)
}

// UserService manages user accounts.
type UserService struct {
	tx          dbx.Transactor
	repos       repomanager.RepositoryManager
	credentials *CredentialService
	nowFn       func() time.Time
}

func NewUserService(tx dbx.Transactor, repos repomanager.RepositoryManager, credentials *CredentialService) *UserService {
	return &UserService{tx: tx, repos: repos, credentials: credentials, nowFn: time.Now}
}

func errInvalidInput(err error) *common.Error {
	return common.NewValidationError(err.Error(), "Check the submitted fields and try again")
}

func errUsernameTaken() *common.Error {
	return common.NewValidationError("The username is already in use", "Use another username to perform this operation")
}

func errEmailTaken() *common.Error {
	return common.NewValidationError("The email is already in use", "Use another email to perform this operation")
}

func errUsernameNotFound() *common.Error {
	return common.NewNotFoundError("The username was not found", "Check that the username is spelled correctly")
}

// checkUnique fails when another user holds username or email. Empty values
// are not checked.
func (s *UserService) checkUnique(ctx context.Context, self uuid.UUID, username, email string) error {
	repo := s.repos.Users(s.tx.Conn())

	if username != "" {
		u, err := repo.FindByUsername(ctx, username)
		switch {
		case err == nil && u.ID != self:
			return errUsernameTaken()
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return internalError(err)
		}
	}
	if email != "" {
		u, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil && u.ID != self:
			return errEmailTaken()
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return internalError(err)
		}
	}
	return nil
}

// Create registers a user holding only the pending features.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, errInvalidInput(err)
	}
	if err := s.checkUnique(ctx, uuid.Nil, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.credentials.HashPassword(in.Password)
	if err != nil {
		return nil, internalError(err)
	}

	now := clock(s.nowFn)
	user, err := s.repos.Users(s.tx.Conn()).Create(ctx, &models.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		Features:  features.Names(features.PendingUserFeatures...),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("The username or email is already in use", "Use other values to perform this operation")
		}
		return nil, internalError(err)
	}
	return user, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repos.Users(s.tx.Conn()).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errUsernameNotFound()
		}
		return nil, internalError(err)
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repos.Users(s.tx.Conn()).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("The user was not found", "Check that the user exists")
		}
		return nil, internalError(err)
	}
	return user, nil
}

// Update applies the non-nil fields of in to the user named username.
func (s *UserService) Update(ctx context.Context, username string, in UpdateUserInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, errInvalidInput(err)
	}

	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if in.Username != nil {
		newUsername = *in.Username
		user.Username = newUsername
	}
	if in.Email != nil {
		newEmail = *in.Email
		user.Email = newEmail
	}
	if err := s.checkUnique(ctx, user.ID, newUsername, newEmail); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := s.credentials.HashPassword(*in.Password)
		if err != nil {
			return nil, internalError(err)
		}
		user.Password = hash
	}

	user.UpdatedAt = clock(s.nowFn)
	updated, err := s.repos.Users(s.tx.Conn()).Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("The username or email is already in use", "Use other values to perform this operation")
		}
		return nil, internalError(err)
	}
	return updated, nil
}

// SetFeatures replaces the features of the user named username. The names are
// validated against the closed feature set first.
func (s *UserService) SetFeatures(ctx context.Context, username string, names []string) (*models.User, error) {
	set, err := features.ParseSet(names)
	if err != nil {
		return nil, common.NewValidationError(err.Error(), "Use only known feature names")
	}

	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Users(s.tx.Conn()).SetFeatures(ctx, user.ID, set.Strings(), clock(s.nowFn))
	if err != nil {
		return nil, internalError(err)
	}
	return updated, nil
}
