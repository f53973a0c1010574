package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SessionKind separates access-token sessions from refresh-token sessions.
type SessionKind string

const (
	SessionAccess  SessionKind = "access"
	SessionRefresh SessionKind = "refresh"
)

// Session records one issued bearer token. The raw token is never stored;
// sessions are keyed by its SHA-256 hash.
type Session struct {
	TokenHash string      `json:"tokenHash"`
	UserID    uuid.UUID   `json:"userId"`
	Kind      SessionKind `json:"kind"`
	Device    string      `json:"device"`
	ClientIP  string      `json:"clientIp"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// HashToken returns the hex SHA-256 of a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewSession builds the record for a freshly issued token.
func NewSession(token string, kind SessionKind, userID uuid.UUID, device, clientIP string, now, expiresAt time.Time) *Session {
	return &Session{
		TokenHash: HashToken(token),
		UserID:    userID,
		Kind:      kind,
		Device:    device,
		ClientIP:  clientIP,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Matches reports whether the session belongs to userID and is of kind.
func (s *Session) Matches(userID uuid.UUID, kind SessionKind) bool {
	return s.UserID == userID && s.Kind == kind
}

// SessionSummary is the caller-facing view of a session.
type SessionSummary struct {
	Kind      SessionKind `json:"kind"`
	Device    string      `json:"device"`
	ClientIP  string      `json:"clientIp,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Current   bool        `json:"current"`
}

func (s *Session) Summary(currentHash string) SessionSummary {
	return SessionSummary{
		Kind:      s.Kind,
		Device:    s.Device,
		ClientIP:  s.ClientIP,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Current:   s.TokenHash == currentHash,
	}
}
