package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	userrepo "github.com/bulatminnakhmetov/vitrina-backend/internal/repository/user"
)

type User = userrepo.User

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type UserRepository interface {
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id int) (*User, error)
	CreateUser(user *User) error
}

type AuthService struct {
	userRepository UserRepository
	jwtSecret      []byte
	tokenExpiry    time.Duration
	refreshExpiry  time.Duration
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

func NewAuthService(userRepo UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepository: userRepo,
		jwtSecret:      []byte(jwtSecret),
		tokenExpiry:    time.Hour * 1,      // Token valid for 1 hour
		refreshExpiry:  time.Hour * 24 * 7, // Refresh token valid for 7 days
	}
}

func (s *AuthService) Login(email, password string) (*AuthResponse, error) {
	user, err := s.userRepository.GetUserByEmail(email)

	if err != nil && err != userrepo.ErrUserNotFound {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) Register(email, password string) (*AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.userRepository.GetUserByEmail(email)

	if err != nil && err != userrepo.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to process request")
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	// Save user to DB
	if err := s.userRepository.CreateUser(user); err != nil {
		return nil, errors.New("failed to create user")
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	// Parse refresh token
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid refresh token")
	}

	// Verify that it's a refresh token
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return nil, errors.New("invalid token type")
	}

	// Get user from database
	userID := int(claims["user_id"].(float64))
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) buildAuthResponse(user *User) (*AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, errors.New("failed to generate refresh token")
	}

	// Clear sensitive data
	userCopy := *user
	userCopy.PasswordHash = ""

	return &AuthResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         &userCopy,
	}, nil
}

func (s *AuthService) generateToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenExpiry).Unix(),
		"type":    "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.refreshExpiry).Unix(),
		"type":    "refresh",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// GetUserInfoFromToken extracts user information from JWT token
func (s *AuthService) GetUserInfoFromToken(tokenString string) (*User, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return nil, errors.New("invalid token type")
	}

	userID := int(claims["user_id"].(float64))
	email := claims["email"].(string)

	return &userrepo.User{ID: userID, Email: email}, nil
}
