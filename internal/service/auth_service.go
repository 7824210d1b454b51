package service

import (
	"errors"
	"fmt"
	"strings"

	"stockly-api/internal/model"
	"stockly-api/internal/repository"
	"stockly-api/pkg/jwt"
	"stockly-api/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
	ErrUsernameExhausted  = errors.New("unable to generate unique username")
)

// ErrValidation wraps input-shape failures so handlers can map them to
// a 400 without inspecting the message.
type ErrValidation struct {
	Field string
	Tag   string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// usernameAttemptLimit bounds the suffix search during registration.
const usernameAttemptLimit = 1000

type AuthService interface {
	Register(name, email, password string) (*model.UserResponse, error)
	Login(email, password string) (string, *model.UserResponse, error)
	GetSession(token string) *model.UserResponse
}

// RegisterInput carries the registration payload through validation.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(name, email, password string) (*model.UserResponse, error) {
	// 1. Validate input shape
	input := RegisterInput{Name: name, Email: email, Password: password}
	if errs := validator.ValidateStruct(input); len(errs) > 0 {
		return nil, &ErrValidation{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}

	// 2. Reject known duplicate emails early. Only a confirmed miss
	// means the email is free; a store failure must surface as one.
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	// 3. Derive a unique username from the email local part
	username, err := s.deriveUsername(email)
	if err != nil {
		return nil, err
	}

	// 4. Hash password and create the record
	user := &model.User{
		Name:     name,
		Email:    email,
		Username: username,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can win the username or email
		// between the checks above and this insert. The store's
		// unique constraint is the final arbiter.
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// deriveUsername takes the email local part and appends an
// incrementing numeric suffix until no collision is found, giving up
// after usernameAttemptLimit attempts.
func (s *authService) deriveUsername(email string) (string, error) {
	base := strings.Split(email, "@")[0]
	username := base

	for counter := 1; ; counter++ {
		if _, err := s.userRepo.FindByUsername(username); err != nil {
			if repository.IsNotFound(err) {
				return username, nil
			}
			return "", err
		}
		if counter > usernameAttemptLimit {
			return "", ErrUsernameExhausted
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}

func (s *authService) Login(email, password string) (string, *model.UserResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		return "", nil, errors.New("failed to generate token")
	}

	resp := user.ToResponse()
	return token, &resp, nil
}

// GetSession resolves a session token to the public view of its user.
// Any invalid, expired, or absent session returns nil: anonymous is a
// normal outcome here, not a fault.
func (s *authService) GetSession(token string) *model.UserResponse {
	userID, err := jwt.VerifyToken(token)
	if err != nil {
		return nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil
	}

	resp := user.ToResponse()
	return &resp
}
