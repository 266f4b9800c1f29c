package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/dmitrijs2005/openpass/internal/cryptox"
	"github.com/dmitrijs2005/openpass/internal/dbx"
	"github.com/dmitrijs2005/openpass/internal/logging"
	"github.com/dmitrijs2005/openpass/internal/models"
	"github.com/dmitrijs2005/openpass/internal/policy"
	"github.com/dmitrijs2005/openpass/internal/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for new password hashes.
const DefaultBcryptCost = 12

// compareHash is a seam for tests that count hash comparisons.
var compareHash = bcrypt.CompareHashAndPassword

// AuthService registers accounts and authenticates master passwords.
type AuthService struct {
	exec        *dbx.Executor
	repomanager repomanager.RepositoryManager
	cost        int
	dummyHash   []byte
	log         logging.Logger
}

// NewAuthService builds an AuthService. A cost of 0 selects
// DefaultBcryptCost. The dummy hash used for unknown usernames is computed
// here, once, with the same cost.
func NewAuthService(exec *dbx.Executor, m repomanager.RepositoryManager, cost int, log logging.Logger) (*AuthService, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		exec:        exec,
		repomanager: m,
		cost:        cost,
		dummyHash:   dummy,
		log:         log,
	}, nil
}

// RegisterAccount validates a registration form with
// policy.ValidateRegistrationFields and then calls Register.
func (s *AuthService) RegisterAccount(ctx context.Context, username, email string, password, confirmation []byte) (string, error) {
	if err := policy.ValidateRegistrationFields(username, email, string(password), string(confirmation)); err != nil {
		return "", err
	}
	return s.Register(ctx, username, password, email)
}

// Register creates an account and returns its id.
//
// The password is stored as a bcrypt hash. A separate random salt is
// generated for field-key derivation. A taken username yields
// common.ErrDuplicateUsername; there is no pre-check, the unique
// constraint decides.
func (s *AuthService) Register(ctx context.Context, username string, password []byte, recoveryContact string) (string, error) {
	if username == "" {
		return "", common.NewValidationError("username", "username is required")
	}
	if !policy.ValidateEmail(recoveryContact) {
		return "", common.NewValidationError("recovery_contact", "invalid e-mail format")
	}

	hash, err := s.hash(password)
	if err != nil {
		return "", err
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return "", err
	}

	user := &models.User{
		ID:              uuid.NewString(),
		UserName:        username,
		PasswordHash:    hash,
		KDFSalt:         salt,
		RecoveryContact: recoveryContact,
	}

	err = s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Create(ctx, user)
	})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			s.log.Info(ctx, "registration rejected: username taken")
			return "", common.ErrDuplicateUsername
		}
		return "", err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

func (s *AuthService) hash(password []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.NewValidationError("password", "password must be at most 72 bytes")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies password for username and returns the account, including
// its KDF salt. Unknown usernames and wrong passwords both return
// common.ErrAuthenticationFailure. Every attempt performs at least one
// bcrypt comparison at the configured cost: a stored hash with a different
// cost is compared and the dummy hash is compared as well. After a
// successful login such a hash is replaced by one at the configured cost.
// Persistence failures are returned as is.
func (s *AuthService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	var user *models.User
	err := s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).GetByUserName(ctx, username)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	if user == nil {
		_ = compareHash(s.dummyHash, password)
		s.log.Info(ctx, "login failed")
		return nil, common.ErrAuthenticationFailure
	}

	stored := []byte(user.PasswordHash)
	cmpErr := compareHash(stored, password)

	stale := false
	if cost, err := bcrypt.Cost(stored); err != nil || cost != s.cost {
		stale = true
		_ = compareHash(s.dummyHash, password)
	}

	if cmpErr != nil {
		s.log.Info(ctx, "login failed")
		return nil, common.ErrAuthenticationFailure
	}

	if stale {
		s.rehash(ctx, user, password)
	}

	s.log.Info(ctx, "login succeeded", "user_id", user.ID)
	return user, nil
}

// rehash stores password at the configured cost. Failures are logged and
// do not fail the login.
func (s *AuthService) rehash(ctx context.Context, user *models.User, password []byte) {
	hash, err := s.hash(password)
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		return
	}

	err = s.exec.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).UpdatePasswordHash(ctx, user.ID, hash)
	})
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		return
	}

	user.PasswordHash = hash
	s.log.Info(ctx, "password rehashed", "user_id", user.ID, "cost", s.cost)
}
