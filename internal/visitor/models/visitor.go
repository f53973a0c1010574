// Package models holds the visitor record and its check-in lifecycle.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"frontdesk/internal/screening"
	dErrors "frontdesk/pkg/domain-errors"
)

// Status is the visit lifecycle state.
type Status string

const (
	StatusPreRegistered Status = "pre-registered"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusCheckedIn     Status = "checked-in"
	StatusCheckedOut    Status = "checked-out"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPreRegistered, StatusApproved, StatusRejected, StatusCheckedIn, StatusCheckedOut:
		return true
	}
	return false
}

// AIAnalysis holds the screening results attached at creation.
type AIAnalysis struct {
	Sentiment        *screening.Sentiment `json:"sentiment,omitempty"`
	SecurityConcerns []string             `json:"securityConcerns"`
	WatchlistMatch   bool                 `json:"watchlistMatch"`
}

// Visitor is a tracked physical visit.
//
// Invariants:
//   - Status is one of the fixed states
//   - CheckInTime and CheckOutTime are set only by their transitions
type Visitor struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Company      string     `json:"company,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Host         uuid.UUID  `json:"host"`
	Purpose      string     `json:"purpose"`
	Status       Status     `json:"status"`
	VisitDate    time.Time  `json:"visitDate"`
	CheckInTime  *time.Time `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	PhotoURL     string     `json:"photoUrl,omitempty"`
	IDScanURL    string     `json:"idScanUrl,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	AIAnalysis   AIAnalysis `json:"aiAnalysis"`
	BadgePrinted bool       `json:"badgePrinted"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CreateVisitorRequest is the pre-registration payload.
type CreateVisitorRequest struct {
	Name      string     `json:"name"`
	Company   string     `json:"company"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Host      uuid.UUID  `json:"host"`
	Purpose   string     `json:"purpose"`
	VisitDate *time.Time `json:"visitDate"`
	Notes     string     `json:"notes"`
	PhotoURL  string     `json:"photoUrl"`
	IDScanURL string     `json:"idScanUrl"`
}

// UpdateVisitorRequest lists the fields that may change after creation.
// Status only accepts an approval decision.
type UpdateVisitorRequest struct {
	Company      *string    `json:"company,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Purpose      *string    `json:"purpose,omitempty"`
	VisitDate    *time.Time `json:"visitDate,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	PhotoURL     *string    `json:"photoUrl,omitempty"`
	IDScanURL    *string    `json:"idScanUrl,omitempty"`
	BadgePrinted *bool      `json:"badgePrinted,omitempty"`
	Status       *Status    `json:"status,omitempty"`
}

// NewVisitor validates req and returns a pre-registered visitor.
func NewVisitor(req CreateVisitorRequest, now time.Time) (*Visitor, error) {
	var problems []string

	name := strings.TrimSpace(req.Name)
	if name == "" {
		problems = append(problems, "Name is required")
	}
	if req.Host == uuid.Nil {
		problems = append(problems, "Host is required")
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		problems = append(problems, "Purpose is required")
	}
	if req.VisitDate == nil || req.VisitDate.IsZero() {
		problems = append(problems, "Visit date is required")
	}
	email, ok := normalizeEmail(req.Email)
	if !ok {
		problems = append(problems, invalidEmail)
	}
	if len(problems) > 0 {
		return nil, dErrors.Validation(problems...)
	}

	return &Visitor{
		ID:         uuid.New(),
		Name:       name,
		Company:    strings.TrimSpace(req.Company),
		Email:      email,
		Phone:      strings.TrimSpace(req.Phone),
		Host:       req.Host,
		Purpose:    purpose,
		Status:     StatusPreRegistered,
		VisitDate:  req.VisitDate.UTC(),
		PhotoURL:   req.PhotoURL,
		IDScanURL:  req.IDScanURL,
		Notes:      strings.TrimSpace(req.Notes),
		AIAnalysis: AIAnalysis{SecurityConcerns: []string{}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

const invalidEmail = "Please provide a valid email"

// normalizeEmail lowercases and trims an optional address.
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email != "" && !govalidator.IsEmail(email) {
		return "", false
	}
	return email, true
}

// Apply writes the whitelisted fields onto v.
func (v *Visitor) Apply(req UpdateVisitorRequest, now time.Time) error {
	if req.Status != nil {
		if err := v.decide(*req.Status); err != nil {
			return err
		}
	}
	if req.Purpose != nil {
		purpose := strings.TrimSpace(*req.Purpose)
		if purpose == "" {
			return dErrors.Validation("Purpose is required")
		}
		v.Purpose = purpose
	}
	if req.Email != nil {
		email, ok := normalizeEmail(*req.Email)
		if !ok {
			return dErrors.Validation(invalidEmail)
		}
		v.Email = email
	}
	if req.VisitDate != nil {
		if req.VisitDate.IsZero() {
			return dErrors.Validation("Visit date is required")
		}
		v.VisitDate = req.VisitDate.UTC()
	}
	if req.Company != nil {
		v.Company = strings.TrimSpace(*req.Company)
	}
	if req.Phone != nil {
		v.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Notes != nil {
		v.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.PhotoURL != nil {
		v.PhotoURL = *req.PhotoURL
	}
	if req.IDScanURL != nil {
		v.IDScanURL = *req.IDScanURL
	}
	if req.BadgePrinted != nil {
		v.BadgePrinted = *req.BadgePrinted
	}
	v.UpdatedAt = now
	return nil
}

func (v *Visitor) decide(s Status) error {
	if s != StatusApproved && s != StatusRejected {
		return dErrors.New(dErrors.CodeBadRequest, "Status can only be set to approved or rejected")
	}
	if v.Status == s {
		return nil
	}
	if v.Status != StatusPreRegistered {
		return dErrors.New(dErrors.CodeBadRequest, "Only pre-registered visitors can be approved or rejected")
	}
	v.Status = s
	return nil
}

// CanCheckIn reports whether the visitor may check in now.
func (v *Visitor) CanCheckIn() error {
	if !slices.Contains([]Status{StatusPreRegistered, StatusApproved}, v.Status) {
		return dErrors.New(dErrors.CodeBadRequest, "Visitor cannot be checked in from status "+string(v.Status))
	}
	return nil
}

func (v *Visitor) ApplyCheckIn(now time.Time) {
	v.Status = StatusCheckedIn
	v.CheckInTime = &now
	v.UpdatedAt = now
}

func (v *Visitor) CanCheckOut() error {
	if v.Status != StatusCheckedIn {
		return dErrors.New(dErrors.CodeBadRequest, "Visitor is not checked in")
	}
	return nil
}

func (v *Visitor) ApplyCheckOut(now time.Time) {
	v.Status = StatusCheckedOut
	v.CheckOutTime = &now
	v.UpdatedAt = now
}

// Flag records screening output on the visitor.
func (v *Visitor) Flag(sentiment *screening.Sentiment) {
	v.AIAnalysis.Sentiment = sentiment
	if sentiment != nil {
		v.AIAnalysis.SecurityConcerns = append(v.AIAnalysis.SecurityConcerns, screening.Concerns(*sentiment)...)
	}
}

func (v *Visitor) Clone() *Visitor {
	c := *v
	c.CheckInTime = cloneTime(v.CheckInTime)
	c.CheckOutTime = cloneTime(v.CheckOutTime)
	c.AIAnalysis.SecurityConcerns = slices.Clone(v.AIAnalysis.SecurityConcerns)
	if v.AIAnalysis.Sentiment != nil {
		s := *v.AIAnalysis.Sentiment
		c.AIAnalysis.Sentiment = &s
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
