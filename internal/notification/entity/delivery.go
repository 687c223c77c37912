package entity

import "time"

type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// DeliveryLog is the audit row written for every dispatched code. The code
// itself is never stored.
type DeliveryLog struct {
	ID        int64
	UserID    int64
	Purpose   string
	Channel   string
	Provider  string
	Status    DeliveryStatus
	Reference string
	Error     string
	CreatedAt time.Time
}
