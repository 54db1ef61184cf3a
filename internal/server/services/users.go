// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, session
// issuance/resolution, and administrative user management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/accountd/internal/common"
	"github.com/avoronov/accountd/internal/cryptox"
	"github.com/avoronov/accountd/internal/dbx"
	"github.com/avoronov/accountd/internal/server/auth"
	"github.com/avoronov/accountd/internal/server/config"
	"github.com/avoronov/accountd/internal/server/models"
	"github.com/avoronov/accountd/internal/server/repositories/repomanager"
)

// dummySalt is burned through a digest derivation when a login targets an
// unknown email, so that unknown-email and wrong-password attempts cost the
// same amount of work.
var dummySalt = make([]byte, cryptox.SaltSize)

// UserService provides account operations:
//   - Register: validate, derive credential, create user
//   - Login: verify credentials and mint a session token
//   - ResolveSession / Logout: session lifecycle
//   - Get/List/Update/Delete: administrative user management
type UserService struct {
	db                           dbx.DBTX
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	sessionTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

// inTx runs fn inside a database transaction when the service is backed by a
// real *sql.DB; otherwise fn runs against the handle as-is.
func (s *UserService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db, ok := s.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, fn)
	}
	return fn(ctx, s.db)
}

// Register creates a new user from the given identity fields and plaintext
// password. It fails with common.ErrorValidation when any field is empty,
// common.ErrorAlreadyExists when the email or username is taken, and
// common.ErrorInternal on any store failure. The returned user carries no
// credential fields.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, common.ErrorValidation
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return nil, common.ErrorInternal
	}
	digest := cryptox.DeriveDigest(salt, []byte(password))

	user := &models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Credential: models.Credential{
			Salt:           salt,
			PasswordDigest: digest,
		},
	}

	var created *models.User
	err = s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return common.ErrorAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInternal
		}

		// The pre-check above cannot close the race against a concurrent
		// registration; the unique indexes on username and email do.
		created, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	created.Credential = models.Credential{}
	return created, nil
}

// Login verifies the password against the stored salt-bound digest and, on
// success, mints a session token and persists it on the user record. Unknown
// emails and wrong passwords both fail with common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	var token string

	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmailWithCredential(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				cryptox.DeriveDigest(dummySalt, []byte(password))
				return common.ErrorUnauthorized
			}
			return common.ErrorInternal
		}

		if !cryptox.VerifyDigest(user.Credential.PasswordDigest, user.Credential.Salt, []byte(password)) {
			return common.ErrorUnauthorized
		}

		token, err = auth.GenerateSessionToken(user.ID, s.jwtSecret, s.sessionTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}

		return repo.SetSessionToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	return token, nil
}

// ResolveSession returns the user owning the presented token. The token
// signature and expiry are checked first, but the store lookup is what
// decides: a token that is valid yet absent from the store (logged out,
// superseded by a later login) yields common.ErrorUnauthorized.
func (s *UserService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	if _, err := auth.GetUserIDFromToken(token, s.jwtSecret); err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Logout clears the stored session token. Logging out a token that is not
// stored is a no-op, so the operation is idempotent.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.ClearSessionToken(ctx, token); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// GetUser returns the public projection of a single user.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// ListUsers returns public projections for all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return list, nil
}

// UpdateUser applies a partial update of the profile fields. Fields that are
// present must be non-empty; a conflicting username or email fails with
// common.ErrorAlreadyExists.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	if upd.Username == nil && upd.Email == nil {
		return common.ErrorValidation
	}
	if upd.Username != nil && *upd.Username == "" {
		return common.ErrorValidation
	}
	if upd.Email != nil && *upd.Email == "" {
		return common.ErrorValidation
	}

	err := s.repomanager.Users(s.db).Update(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorNotFound
		case errors.Is(err, common.ErrorAlreadyExists):
			return common.ErrorAlreadyExists
		default:
			return common.ErrorInternal
		}
	}

	return nil
}

// DeleteUser removes the record entirely, active session included.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.repomanager.Users(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}
