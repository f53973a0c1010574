// Package models defines physical keys and their custody lifecycle.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"frontdesk/pkg/domain"
	dErrors "frontdesk/pkg/domain-errors"
)

type Status string

const (
	StatusAvailable  Status = "available"
	StatusCheckedOut Status = "checked-out"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAvailable, StatusCheckedOut:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid key status: "+s)
}

type AccessLevel string

const (
	AccessLow      AccessLevel = "Low"
	AccessMedium   AccessLevel = "Medium"
	AccessHigh     AccessLevel = "High"
	AccessCritical AccessLevel = "Critical"
)

func ParseAccessLevel(s string) (AccessLevel, error) {
	if l := AccessLevel(s); l.IsValid() {
		return l, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid access level: "+s)
}

func (l AccessLevel) IsValid() bool {
	switch l {
	case AccessLow, AccessMedium, AccessHigh, AccessCritical:
		return true
	}
	return false
}

// Elevated levels alert security staff on every checkout.
func (l AccessLevel) Elevated() bool {
	return l == AccessHigh || l == AccessCritical
}

// Key is a physical key held at the front desk.
//
// Invariants:
//   - KeyNumber is unique
//   - Status is checked-out iff AssignedTo is set
//   - a checked-out key has no ReturnTime
type Key struct {
	ID                 uuid.UUID     `json:"id"`
	KeyName            string        `json:"keyName"`
	KeyNumber          string        `json:"keyNumber"`
	Area               string        `json:"area"`
	Status             Status        `json:"status"`
	AssignedTo         *uuid.UUID    `json:"assignedTo"`
	CheckoutTime       *time.Time    `json:"checkoutTime"`
	ReturnTime         *time.Time    `json:"returnTime"`
	ExpectedReturnTime *time.Time    `json:"expectedReturnTime"`
	AccessLevel        AccessLevel   `json:"accessLevel"`
	AuthorizedRoles    []domain.Role `json:"authorizedRoles"`
	Location           string        `json:"location,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	CreatedBy          uuid.UUID     `json:"createdBy"`
	UpdatedBy          *uuid.UUID    `json:"updatedBy,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

type CreateKeyRequest struct {
	KeyName         string        `json:"keyName"`
	KeyNumber       string        `json:"keyNumber"`
	Area            string        `json:"area"`
	AccessLevel     AccessLevel   `json:"accessLevel"`
	AuthorizedRoles []domain.Role `json:"authorizedRoles"`
	Location        string        `json:"location"`
	Notes           string        `json:"notes"`
}

// UpdateKeyRequest leaves custody fields out; those change only through
// checkout and return.
type UpdateKeyRequest struct {
	KeyName         *string        `json:"keyName,omitempty"`
	KeyNumber       *string        `json:"keyNumber,omitempty"`
	Area            *string        `json:"area,omitempty"`
	AccessLevel     *AccessLevel   `json:"accessLevel,omitempty"`
	AuthorizedRoles *[]domain.Role `json:"authorizedRoles,omitempty"`
	Location        *string        `json:"location,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
}

// CheckoutRequest may be empty. AssignedTo is honoured only for key managers.
type CheckoutRequest struct {
	AssignedTo         *uuid.UUID `json:"assignedTo,omitempty"`
	ExpectedReturnTime *time.Time `json:"expectedReturnTime,omitempty"`
}

const (
	invalidAccessLevel = "Access level must be one of Low, Medium, High, Critical"
	invalidRoles       = "Authorized roles must be drawn from Admin, Reception, Security, Employee"
)

func NewKey(req CreateKeyRequest, actor uuid.UUID, now time.Time) (*Key, error) {
	var problems []string
	name := strings.TrimSpace(req.KeyName)
	if name == "" {
		problems = append(problems, "Key name is required")
	}
	number := strings.TrimSpace(req.KeyNumber)
	if number == "" {
		problems = append(problems, "Key number is required")
	}
	area := strings.TrimSpace(req.Area)
	if area == "" {
		problems = append(problems, "Area is required")
	}
	level := req.AccessLevel
	if level == "" {
		level = AccessLow
	} else if !level.IsValid() {
		problems = append(problems, invalidAccessLevel)
	}
	if !validRoles(req.AuthorizedRoles) {
		problems = append(problems, invalidRoles)
	}
	if len(problems) > 0 {
		return nil, dErrors.Validation(problems...)
	}

	roles := req.AuthorizedRoles
	if roles == nil {
		roles = []domain.Role{}
	}
	return &Key{
		ID:              uuid.New(),
		KeyName:         name,
		KeyNumber:       number,
		Area:            area,
		Status:          StatusAvailable,
		AccessLevel:     level,
		AuthorizedRoles: roles,
		Location:        strings.TrimSpace(req.Location),
		Notes:           strings.TrimSpace(req.Notes),
		CreatedBy:       actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func validRoles(roles []domain.Role) bool {
	for _, r := range roles {
		if !r.IsValid() {
			return false
		}
	}
	return true
}

func (k *Key) Apply(req UpdateKeyRequest, actor uuid.UUID, now time.Time) error {
	if req.KeyName != nil {
		name := strings.TrimSpace(*req.KeyName)
		if name == "" {
			return dErrors.Validation("Key name is required")
		}
		k.KeyName = name
	}
	if req.KeyNumber != nil {
		number := strings.TrimSpace(*req.KeyNumber)
		if number == "" {
			return dErrors.Validation("Key number is required")
		}
		k.KeyNumber = number
	}
	if req.Area != nil {
		area := strings.TrimSpace(*req.Area)
		if area == "" {
			return dErrors.Validation("Area is required")
		}
		k.Area = area
	}
	if req.AccessLevel != nil {
		if !req.AccessLevel.IsValid() {
			return dErrors.Validation(invalidAccessLevel)
		}
		k.AccessLevel = *req.AccessLevel
	}
	if req.AuthorizedRoles != nil {
		if !validRoles(*req.AuthorizedRoles) {
			return dErrors.Validation(invalidRoles)
		}
		k.AuthorizedRoles = append([]domain.Role{}, *req.AuthorizedRoles...)
	}
	if req.Location != nil {
		k.Location = strings.TrimSpace(*req.Location)
	}
	if req.Notes != nil {
		k.Notes = strings.TrimSpace(*req.Notes)
	}
	k.touch(actor, now)
	return nil
}

// Permits reports whether role may take the key. An empty list admits everyone.
func (k *Key) Permits(role domain.Role) bool {
	return len(k.AuthorizedRoles) == 0 || role.In(k.AuthorizedRoles...)
}

// CanCheckout checks availability before the role gate, so a taken key
// reports 400 to every caller.
func (k *Key) CanCheckout(role domain.Role) error {
	if k.Status != StatusAvailable {
		return dErrors.New(dErrors.CodeBadRequest, "Key is not available for checkout")
	}
	if !k.Permits(role) {
		return dErrors.New(dErrors.CodeForbidden, "You are not authorized to checkout this key")
	}
	return nil
}

func (k *Key) ApplyCheckout(assignee, actor uuid.UUID, expected *time.Time, now time.Time) {
	k.Status = StatusCheckedOut
	k.AssignedTo = &assignee
	k.CheckoutTime = &now
	k.ReturnTime = nil
	k.ExpectedReturnTime = nil
	if expected != nil && !expected.IsZero() {
		t := expected.UTC()
		k.ExpectedReturnTime = &t
	}
	k.touch(actor, now)
}

func (k *Key) CanReturn() error {
	if k.Status != StatusCheckedOut {
		return dErrors.New(dErrors.CodeBadRequest, "Key is not checked out")
	}
	return nil
}

// ApplyReturn releases the key and reports who held it.
func (k *Key) ApplyReturn(actor uuid.UUID, now time.Time) uuid.UUID {
	var previous uuid.UUID
	if k.AssignedTo != nil {
		previous = *k.AssignedTo
	}
	k.Status = StatusAvailable
	k.AssignedTo = nil
	k.ReturnTime = &now
	k.touch(actor, now)
	return previous
}

func (k *Key) CanDelete() error {
	if k.Status == StatusCheckedOut {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot delete a checked-out key")
	}
	return nil
}

// IsOverdue reports a checked-out key whose expected return has passed.
func (k *Key) IsOverdue(now time.Time) bool {
	return k.Status == StatusCheckedOut && k.ExpectedReturnTime != nil && k.ExpectedReturnTime.Before(now)
}

func (k *Key) touch(actor uuid.UUID, now time.Time) {
	k.UpdatedBy = &actor
	k.UpdatedAt = now
}

func (k *Key) Clone() *Key {
	c := *k
	c.AssignedTo = cloneUUID(k.AssignedTo)
	c.UpdatedBy = cloneUUID(k.UpdatedBy)
	c.CheckoutTime = cloneTime(k.CheckoutTime)
	c.ReturnTime = cloneTime(k.ReturnTime)
	c.ExpectedReturnTime = cloneTime(k.ExpectedReturnTime)
	c.AuthorizedRoles = append([]domain.Role{}, k.AuthorizedRoles...)
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
