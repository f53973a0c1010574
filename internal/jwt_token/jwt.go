package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
)

// TokenKind separates access tokens from refresh tokens; each is signed with
// its own key and rejected when presented as the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims represents the JWT claims carried by both token kinds.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role,omitempty"`
	Kind   TokenKind   `json:"kind"`
	jwt.RegisteredClaims
}

// Token is a signed token and its expiry.
type Token struct {
	Value     string
	Kind      TokenKind
	ExpiresAt time.Time
}

// JWTService issues and validates HS256 tokens.
type JWTService struct {
	accessKey  []byte
	refreshKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTService(accessKey, refreshKey, issuer string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL is the lifetime applied to access tokens.
func (s *JWTService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is the lifetime applied to refresh tokens.
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *JWTService) GenerateAccessToken(userID uuid.UUID, role domain.Role, now time.Time) (Token, error) {
	return s.sign(KindAccess, userID, role, now, s.accessTTL, s.accessKey)
}

// GenerateRefreshToken omits the role; the current role is read from the
// user record when the token is redeemed.
func (s *JWTService) GenerateRefreshToken(userID uuid.UUID, now time.Time) (Token, error) {
	return s.sign(KindRefresh, userID, "", now, s.refreshTTL, s.refreshKey)
}

func (s *JWTService) sign(kind TokenKind, userID uuid.UUID, role domain.Role, now time.Time, ttl time.Duration, key []byte) (Token, error) {
	expiresAt := now.Add(ttl)
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID.String(),
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			// jti keeps two tokens minted in the same second distinct
			ID: uuid.NewString(),
		},
	})

	signed, err := newToken.SignedString(key)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Kind: kind, ExpiresAt: expiresAt}, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, KindAccess, s.accessKey)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, KindRefresh, s.refreshKey)
}

func (s *JWTService) validate(tokenString string, kind TokenKind, key []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Kind != kind {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wrong token kind")
	}
	return claims, nil
}

// ParseUserID returns the subject of validated claims.
func (c *Claims) ParseUserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return id, nil
}
