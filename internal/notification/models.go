// Package notification renders domain events into messages and delivers them
// on every channel the recipient has enabled.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type tags a notification template.
type Type string

const (
	TypeVisitorArrival         Type = "visitor_arrival"
	TypeVisitorCheckout        Type = "visitor_checkout"
	TypeVisitorApprovalRequest Type = "visitor_approval_request"
	TypeShipmentReceived       Type = "shipment_received"
	TypeShipmentDelivered      Type = "shipment_delivered"
	TypeKeyCheckoutAlert       Type = "key_checkout_alert"
	TypeKeyReturned            Type = "key_returned"
	TypeKeyOverdue             Type = "key_overdue"
)

// Data carries the template fields. Each template reads only the fields it
// names; the rest stay zero.
type Data struct {
	VisitorName  string
	Company      string
	Purpose      string
	VisitDate    time.Time
	CheckInTime  time.Time
	CheckOutTime time.Time

	Sender         string
	TrackingNumber string
	DeliveredTime  time.Time

	KeyName            string
	KeyNumber          string
	AssigneeName       string
	CheckoutTime       time.Time
	ReturnTime         time.Time
	ExpectedReturnTime time.Time
}

// Notification is one event addressed to one user.
type Notification struct {
	Type        Type
	RecipientID uuid.UUID
	Data        Data
}

// Record describes a dispatched notification regardless of per-channel outcome.
type Record struct {
	Type        Type      `json:"type"`
	RecipientID uuid.UUID `json:"recipientId"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sentAt"`
}
