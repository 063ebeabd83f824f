package user

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/repo"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// BcryptCostFromEnv reads the bcrypt work factor from BCRYPT_COST, defaulting
// to 12 when unset or unparsable.
func BcryptCostFromEnv() int {
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			return cost
		}
	}
	return 12
}

var (
	ErrValidation        = errors.New("validation failed")
	ErrUserNotFound      = errors.New("user not found")
	ErrUnverified        = errors.New("email not verified")
	ErrBadCredentials    = errors.New("incorrect password")
	ErrDuplicateEmail    = userrepo.ErrDuplicateEmail
	ErrDuplicateUsername = userrepo.ErrDuplicateUsername
)

// UserService orchestrates registration and password authentication.
type UserService struct {
	repo   userrepo.Repository
	hasher PasswordHasher
}

func NewUserService(r userrepo.Repository, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: BcryptCostFromEnv()}
	}
	return &UserService{repo: r, hasher: hasher}
}

// Register validates input, checks for duplicate identity and persists the
// account with a hashed password. The two existence lookups are not
// transactional with the insert; the repo maps the uniqueness-constraint
// violation when a concurrent registration wins the race.
func (s *UserService) Register(ctx context.Context, name, email, username, password string) (int64, error) {
	if err := validateRegistration(name, email, username, password); err != nil {
		return 0, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return 0, ErrDuplicateEmail
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return 0, ErrDuplicateUsername
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	u := &entity.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	return s.repo.Create(ctx, u)
}

// Authenticate resolves loginID as an email when it has an email shape,
// otherwise as a username, then checks the verified flag and the password.
// A user cannot authenticate while the email is unverified.
func (s *UserService) Authenticate(ctx context.Context, loginID, password string) (*entity.AuthView, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, ErrValidation
	}

	var u *entity.User
	var err error
	if IsEmail(loginID) {
		u, err = s.repo.GetByEmail(ctx, loginID)
	} else {
		u, err = s.repo.GetByUsername(ctx, loginID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !u.EmailVerified {
		return nil, ErrUnverified
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return &entity.AuthView{ID: u.ID, Email: u.Email, Username: u.Username}, nil
}

// MarkEmailVerified is the verification callback invoked after a token checks out.
func (s *UserService) MarkEmailVerified(ctx context.Context, email string) error {
	return s.repo.MarkEmailVerified(ctx, email)
}
