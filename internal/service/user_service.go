package service

import (
	"context"
	"errors"

	dom "remindme/internal/domain"
	"remindme/internal/repo"
	"remindme/internal/validate"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrEmailTaken = errors.New("email already registered")

// UserService handles signup, login and profile lookups.
type UserService struct {
	repo repo.UserRepo
	cost int
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Signup validates the form and creates the account. Validation failures
// are returned as *validate.Error before the repo is touched.
func (s *UserService) Signup(ctx context.Context, email, password, confirm string) (dom.User, error) {
	creds, err := validate.Signup(email, password, confirm)
	if err != nil {
		return dom.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, creds.Email, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Login checks email and password; returns the user if valid.
func (s *UserService) Login(ctx context.Context, email, password string) (dom.User, error) {
	creds, err := validate.Login(email, password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the signed-in user.
func (s *UserService) Profile(ctx context.Context, userID string) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return dom.User{}, mapNotFound(err)
	}
	return u, nil
}
