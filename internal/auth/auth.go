package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusforms/docufill-api/internal/models"
	"github.com/campusforms/docufill-api/internal/repository"
	"github.com/campusforms/docufill-api/internal/utils"
)

const tokenTTL = 24 * time.Hour

// TokenManager issues and verifies the bearer tokens of the API.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (m *TokenManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(m.secret)
}

// Verify parses a token and returns the user ID it was issued to.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || c.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}
	return c.Subject, nil
}

// Service implements signup and login against the user store.
type Service struct {
	users  repository.UserRepository
	tokens *TokenManager
	logger *utils.Logger
}

func NewService(users repository.UserRepository, tokens *TokenManager, logger *utils.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Signup creates an account and returns it with a fresh token.
func (s *Service) Signup(ctx context.Context, email, name, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", utils.NewBadRequestError("A valid email is required")
	}
	if len(password) < 8 {
		return nil, "", utils.NewBadRequestError("Password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", utils.NewConflictError("An account with this email already exists")
	}

	salt, err := generateSalt()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate salt: %w", err)
	}

	user := &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User signed up", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !verifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, "", utils.NewUnauthorizedError("Invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

func generateSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}

func verifyPassword(password, salt, hash string) bool {
	computed := hashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
