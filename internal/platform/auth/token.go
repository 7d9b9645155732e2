package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "careconnect"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role          Role   `json:"role"`
	AccountNumber string `json:"account_number"`
	PatientID     string `json:"patient_id,omitempty"`
	StaffID       string `json:"staff_id,omitempty"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(signingKey []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: signingKey, ttl: ttl, now: time.Now}
}

// Issue signs a token for s, filling in its TokenID and ExpiresAt.
func (t *TokenIssuer) Issue(s *Session) (string, error) {
	now := t.now()
	s.TokenID = uuid.NewString()
	s.ExpiresAt = now.Add(t.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenID,
			Subject:   s.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Role:          s.Role,
		AccountNumber: s.AccountNumber,
	}
	if s.PatientID != nil {
		claims.PatientID = s.PatientID.String()
	}
	if s.StaffID != nil {
		claims.StaffID = s.StaffID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenStr and rebuilds the session it describes.
func (t *TokenIssuer) Parse(tokenStr string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role, ok := ParseRole(string(claims.Role))
	if !ok {
		return nil, ErrInvalidToken
	}

	s := NewSession(userID, role, claims.AccountNumber)
	s.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.PatientID != "" {
		if id, err := uuid.Parse(claims.PatientID); err == nil {
			s.PatientID = &id
		}
	}
	if claims.StaffID != "" {
		if id, err := uuid.Parse(claims.StaffID); err == nil {
			s.StaffID = &id
		}
	}
	return s, nil
}
