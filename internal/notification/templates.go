package notification

import (
	"fmt"
	"time"
)

const (
	timeLayout     = "3:04 PM"
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 3:04 PM"

	genericSubject = "Frontdesk Notification"
	genericMessage = "You have a new notification from Frontdesk."
)

// Render returns the subject and message for t. Unknown types get the
// generic template.
func Render(t Type, d Data) (subject, message string) {
	switch t {
	case TypeVisitorArrival:
		return "Visitor Arrival Notification",
			fmt.Sprintf("Your visitor %s from %s has arrived at %s for %s.",
				d.VisitorName, orUnknown(d.Company), clock(d.CheckInTime), d.Purpose)
	case TypeVisitorCheckout:
		return "Visitor Checkout Notification",
			fmt.Sprintf("Your visitor %s from %s has checked out at %s.",
				d.VisitorName, orUnknown(d.Company), clock(d.CheckOutTime))
	case TypeVisitorApprovalRequest:
		return "Visitor Approval Request",
			fmt.Sprintf("%s from %s has requested a visit on %s at %s for %s. Please approve or reject this request.",
				d.VisitorName, orUnknown(d.Company), d.VisitDate.Format(dateLayout), clock(d.VisitDate), d.Purpose)
	case TypeShipmentReceived:
		return "Shipment Received Notification",
			fmt.Sprintf("A shipment from %s with tracking number %s has been received and is ready for pickup.",
				d.Sender, d.TrackingNumber)
	case TypeShipmentDelivered:
		return "Shipment Delivered Notification",
			fmt.Sprintf("Your shipment with tracking number %s has been delivered at %s.",
				d.TrackingNumber, clock(d.DeliveredTime))
	case TypeKeyCheckoutAlert:
		return "Key Checkout Alert",
			fmt.Sprintf("%s has checked out the %s (%s) key at %s.",
				d.AssigneeName, d.KeyName, d.KeyNumber, clock(d.CheckoutTime))
	case TypeKeyReturned:
		return "Key Return Notification",
			fmt.Sprintf("The %s (%s) key has been returned at %s.",
				d.KeyName, d.KeyNumber, clock(d.ReturnTime))
	case TypeKeyOverdue:
		return "Key Overdue Alert",
			fmt.Sprintf("The %s (%s) key checked out by %s is overdue for return. It was expected to be returned by %s.",
				d.KeyName, d.KeyNumber, d.AssigneeName, d.ExpectedReturnTime.UTC().Format(dateTimeLayout))
	default:
		return genericSubject, genericMessage
	}
}

func clock(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func orUnknown(s string) string {
	if s == "" {
		return "an unspecified company"
	}
	return s
}
