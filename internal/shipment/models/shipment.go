// Package models defines shipments and their forward-only delivery lifecycle.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "frontdesk/pkg/domain-errors"
)

type Status string

const (
	StatusReceived  Status = "received"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
)

// ParseStatus validates a status taken from a path or payload.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusReceived, StatusInTransit, StatusDelivered:
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "Invalid shipment status: "+s)
}

type Type string

const (
	TypePackage  Type = "Package"
	TypeDocument Type = "Document"
	TypePallet   Type = "Pallet"
	TypeOther    Type = "Other"
)

func (t Type) IsValid() bool {
	switch t {
	case TypePackage, TypeDocument, TypePallet, TypeOther:
		return true
	}
	return false
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Shipment is a parcel or document handled by the front desk.
//
// Invariants:
//   - TrackingNumber is unique
//   - DeliveredTime is set only by MarkDelivered
//   - Status only moves forward: received, in-transit, delivered
type Shipment struct {
	ID                   uuid.UUID   `json:"id"`
	TrackingNumber       string      `json:"trackingNumber"`
	Carrier              string      `json:"carrier"`
	Sender               string      `json:"sender"`
	Recipient            uuid.UUID   `json:"recipient"`
	Type                 Type        `json:"type"`
	Status               Status      `json:"status"`
	ReceivedTime         time.Time   `json:"receivedTime"`
	DeliveredTime        *time.Time  `json:"deliveredTime"`
	Notes                string      `json:"notes,omitempty"`
	HandlingInstructions string      `json:"handlingInstructions,omitempty"`
	Weight               *float64    `json:"weight,omitempty"`
	Dimensions           *Dimensions `json:"dimensions,omitempty"`
	PhotoURL             string      `json:"photoUrl,omitempty"`
	SignatureURL         string      `json:"signatureUrl,omitempty"`
	CreatedBy            uuid.UUID   `json:"createdBy"`
	UpdatedBy            *uuid.UUID  `json:"updatedBy,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

type CreateShipmentRequest struct {
	TrackingNumber       string      `json:"trackingNumber"`
	Carrier              string      `json:"carrier"`
	Sender               string      `json:"sender"`
	Recipient            uuid.UUID   `json:"recipient"`
	Type                 Type        `json:"type"`
	ReceivedTime         *time.Time  `json:"receivedTime"`
	Notes                string      `json:"notes"`
	HandlingInstructions string      `json:"handlingInstructions"`
	Weight               *float64    `json:"weight"`
	Dimensions           *Dimensions `json:"dimensions"`
	PhotoURL             string      `json:"photoUrl"`
}

// UpdateShipmentRequest excludes status and timestamps; those change only
// through the transitions.
type UpdateShipmentRequest struct {
	Carrier              *string     `json:"carrier,omitempty"`
	Sender               *string     `json:"sender,omitempty"`
	Recipient            *uuid.UUID  `json:"recipient,omitempty"`
	Type                 *Type       `json:"type,omitempty"`
	Notes                *string     `json:"notes,omitempty"`
	HandlingInstructions *string     `json:"handlingInstructions,omitempty"`
	Weight               *float64    `json:"weight,omitempty"`
	Dimensions           *Dimensions `json:"dimensions,omitempty"`
	PhotoURL             *string     `json:"photoUrl,omitempty"`
}

type MarkDeliveredRequest struct {
	SignatureURL string `json:"signatureUrl"`
}

// NewShipment validates req. ReceivedTime defaults to now.
func NewShipment(req CreateShipmentRequest, actor uuid.UUID, now time.Time) (*Shipment, error) {
	var problems []string
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		problems = append(problems, "Tracking number is required")
	}
	carrier := strings.TrimSpace(req.Carrier)
	if carrier == "" {
		problems = append(problems, "Carrier is required")
	}
	sender := strings.TrimSpace(req.Sender)
	if sender == "" {
		problems = append(problems, "Sender is required")
	}
	if req.Recipient == uuid.Nil {
		problems = append(problems, "Recipient is required")
	}
	switch {
	case req.Type == "":
		problems = append(problems, "Type is required")
	case !req.Type.IsValid():
		problems = append(problems, "Type must be one of Package, Document, Pallet, Other")
	}
	if msg := checkMeasures(req.Weight, req.Dimensions); msg != "" {
		problems = append(problems, msg)
	}
	if len(problems) > 0 {
		return nil, dErrors.Validation(problems...)
	}

	received := now
	if req.ReceivedTime != nil && !req.ReceivedTime.IsZero() {
		received = req.ReceivedTime.UTC()
	}
	return &Shipment{
		ID:                   uuid.New(),
		TrackingNumber:       tracking,
		Carrier:              carrier,
		Sender:               sender,
		Recipient:            req.Recipient,
		Type:                 req.Type,
		Status:               StatusReceived,
		ReceivedTime:         received,
		Notes:                strings.TrimSpace(req.Notes),
		HandlingInstructions: strings.TrimSpace(req.HandlingInstructions),
		Weight:               req.Weight,
		Dimensions:           req.Dimensions,
		PhotoURL:             req.PhotoURL,
		CreatedBy:            actor,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func checkMeasures(weight *float64, dims *Dimensions) string {
	if weight != nil && *weight < 0 {
		return "Weight cannot be negative"
	}
	if dims != nil && (dims.Length < 0 || dims.Width < 0 || dims.Height < 0) {
		return "Dimensions cannot be negative"
	}
	return ""
}

// Apply writes the whitelisted fields and stamps the editor.
func (s *Shipment) Apply(req UpdateShipmentRequest, actor uuid.UUID, now time.Time) error {
	if req.Carrier != nil {
		carrier := strings.TrimSpace(*req.Carrier)
		if carrier == "" {
			return dErrors.Validation("Carrier is required")
		}
		s.Carrier = carrier
	}
	if req.Sender != nil {
		sender := strings.TrimSpace(*req.Sender)
		if sender == "" {
			return dErrors.Validation("Sender is required")
		}
		s.Sender = sender
	}
	if req.Recipient != nil {
		if *req.Recipient == uuid.Nil {
			return dErrors.Validation("Recipient is required")
		}
		s.Recipient = *req.Recipient
	}
	if req.Type != nil {
		if !req.Type.IsValid() {
			return dErrors.Validation("Type must be one of Package, Document, Pallet, Other")
		}
		s.Type = *req.Type
	}
	if msg := checkMeasures(req.Weight, req.Dimensions); msg != "" {
		return dErrors.Validation(msg)
	}
	if req.Notes != nil {
		s.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.HandlingInstructions != nil {
		s.HandlingInstructions = strings.TrimSpace(*req.HandlingInstructions)
	}
	if req.Weight != nil {
		s.Weight = req.Weight
	}
	if req.Dimensions != nil {
		s.Dimensions = req.Dimensions
	}
	if req.PhotoURL != nil {
		s.PhotoURL = *req.PhotoURL
	}
	s.touch(actor, now)
	return nil
}

func (s *Shipment) CanMarkInTransit() error {
	if s.Status != StatusReceived {
		return dErrors.New(dErrors.CodeBadRequest, "Only received shipments can be marked in transit")
	}
	return nil
}

func (s *Shipment) ApplyInTransit(actor uuid.UUID, now time.Time) {
	s.Status = StatusInTransit
	s.touch(actor, now)
}

func (s *Shipment) CanMarkDelivered() error {
	if s.Status == StatusDelivered {
		return dErrors.New(dErrors.CodeBadRequest, "Shipment is already delivered")
	}
	return nil
}

func (s *Shipment) ApplyDelivered(signatureURL string, actor uuid.UUID, now time.Time) {
	s.Status = StatusDelivered
	s.DeliveredTime = &now
	if signatureURL != "" {
		s.SignatureURL = signatureURL
	}
	s.touch(actor, now)
}

func (s *Shipment) touch(actor uuid.UUID, now time.Time) {
	s.UpdatedBy = &actor
	s.UpdatedAt = now
}

func (s *Shipment) Clone() *Shipment {
	c := *s
	if s.DeliveredTime != nil {
		t := *s.DeliveredTime
		c.DeliveredTime = &t
	}
	if s.Weight != nil {
		w := *s.Weight
		c.Weight = &w
	}
	if s.Dimensions != nil {
		d := *s.Dimensions
		c.Dimensions = &d
	}
	if s.UpdatedBy != nil {
		u := *s.UpdatedBy
		c.UpdatedBy = &u
	}
	return &c
}
