package service

import (
	"context"
	"os"
	"time"

	userDto "anoa.com/momentum/internal/modules/user/dto"
	userRepo "anoa.com/momentum/internal/modules/user/repository"
	"anoa.com/momentum/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req userDto.LoginRequest) (*userDto.LoginResponse, error)
	UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) error
}

type authService struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthService(userRepo userRepo.UserRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "12345"
	}

	return &authService{
		userRepo: userRepo,
		secret:   secret,
	}
}

func (s *authService) Login(ctx context.Context, req userDto.LoginRequest) (*userDto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &userDto.LoginResponse{
		Token:    token,
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role.Name,
	}, nil
}

func (s *authService) UpdateTimezone(ctx context.Context, userID uuid.UUID, timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return apperror.ErrInvalidInput
	}
	return s.userRepo.UpdateTimezone(ctx, userID, timezone)
}
