package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"wabiz/internal/entities"
	"wabiz/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthUsecase struct {
	userRepo  *repository.UserRepository
	jwtSecret []byte
}

func NewAuthUsecase(repo *repository.UserRepository, secret string) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  repo,
		jwtSecret: []byte(secret),
	}
}

// Register creates a dashboard account scoped to a tenant. The role is
// always "user"; admins are provisioned at startup or by other admins.
func (uc *AuthUsecase) Register(ctx context.Context, username, password, tenantID string) error {
	if len(password) < 8 {
		return &entities.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		return &entities.ValidationError{Field: "username", Reason: "already exists"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "user",
		TenantID:     tenantID,
		IsActive:     true,
	}
	return uc.userRepo.Create(ctx, user)
}

// Login verifies credentials and issues a 24h JWT carrying the user's
// role and tenant scope.
func (uc *AuthUsecase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, entities.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   user.ID,
		"role":      user.Role,
		"tenant_id": user.TenantID,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// EnsureAdmin creates the platform admin account if it does not exist
// yet. Called once on startup.
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := uc.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entities.ErrUserNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &entities.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "admin",
		IsActive:     true,
	}
	return uc.userRepo.Create(ctx, admin)
}
