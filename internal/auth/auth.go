package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	purposeSession       = "session"
	purposeImpersonation = "impersonation"

	issuer = "vehicle-inventory"
)

// DefaultTokenExpiry applies when no expiry is configured.
const DefaultTokenExpiry = 24 * time.Hour

// tokenClaims is the JWT body of both session tokens and impersonation
// markers. Purpose keeps the two apart.
type tokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Purpose  string `json:"purpose"`
	TargetID string `json:"target_id,omitempty"`
	jwt.RegisteredClaims
}

// Marker is a validated impersonation marker: Admin acts as TargetID.
type Marker struct {
	Admin    *models.Claims
	TargetID string
}

// Matches reports whether the marker was issued for a session of user.
func (m *Marker) Matches(user *models.Claims) bool {
	return m != nil && user != nil && m.TargetID == user.UserID
}

// Service issues and checks credentials.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	now       func() time.Time
	validate  *validator.Validate
}

// NewService creates a new authentication service
func NewService(secret string, tokenExp time.Duration) *Service {
	if tokenExp <= 0 {
		tokenExp = DefaultTokenExpiry
	}
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  tokenExp,
		now:       time.Now,
		validate:  validator.New(),
	}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken generates a session token for a profile
func (s *Service) GenerateToken(p *models.Profile) (string, error) {
	return s.sign(p.ID.Hex(), p.Username, p.Role, purposeSession, "")
}

// GenerateImpersonationToken signs the marker that records which admin
// assumed the identity of targetID.
func (s *Service) GenerateImpersonationToken(admin *models.Claims, targetID string) (string, error) {
	if targetID == "" {
		return "", errors.New("impersonation marker needs a target")
	}
	return s.sign(admin.UserID, admin.Username, admin.Role, purposeImpersonation, targetID)
}

func (s *Service) sign(userID, username string, role models.Role, purpose, targetID string) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   userID,
		Username: username,
		Role:     string(role),
		Purpose:  purpose,
		TargetID: targetID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ValidateToken checks a session token, with or without its "Bearer "
// prefix, and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	claims, err := s.parse(strings.TrimPrefix(tokenString, "Bearer "), purposeSession)
	if err != nil {
		return nil, err
	}
	if claims.TargetID != "" {
		return nil, ErrInvalidToken
	}
	return claims.identity(), nil
}

// ValidateImpersonationToken validates an impersonation marker and returns
// the real admin's claims with the impersonated user's id.
func (s *Service) ValidateImpersonationToken(tokenString string) (*Marker, error) {
	claims, err := s.parse(tokenString, purposeImpersonation)
	if err != nil {
		return nil, err
	}
	if claims.TargetID == "" || claims.TargetID == claims.UserID {
		return nil, ErrInvalidToken
	}
	return &Marker{Admin: claims.identity(), TargetID: claims.TargetID}, nil
}

func (c *tokenClaims) identity() *models.Claims {
	return &models.Claims{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     models.Role(c.Role),
		Exp:      c.ExpiresAt.Unix(),
	}
}

func (s *Service) parse(tokenString, purpose string) (*tokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	}

	// A marker must never be accepted as a session and vice versa.
	if claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", ErrInvalidToken
	}
	return token, nil
}

// ValidatePassword validates password strength
func (s *Service) ValidatePassword(password string) error {
	if s.validate.Var(password, "min=8") != nil {
		return errors.New("password must be at least 8 characters long")
	}
	return nil
}

// ValidateEmail validates email format
func (s *Service) ValidateEmail(email string) error {
	if s.validate.Var(email, "required,email") != nil {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername checks the username length bounds.
func (s *Service) ValidateUsername(username string) error {
	switch {
	case s.validate.Var(username, "min=3") != nil:
		return errors.New("username must be at least 3 characters long")
	case s.validate.Var(username, "max=50") != nil:
		return errors.New("username must be less than 50 characters")
	}
	return nil
}
