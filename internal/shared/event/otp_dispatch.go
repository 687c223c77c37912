package event

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

const OTPDispatchDestination string = "otp.dispatch"
const OTPDispatchConsumerNotification string = "otp_dispatch_notification"

// OTPDispatchMessage asks the notification module to deliver one code.
// DispatchID is unique per publish; consumers deliver each id once.
type OTPDispatchMessage struct {
	DispatchID  string            `json:"dispatch_id"`
	Channel     string            `json:"channel"`
	Destination string            `json:"destination"`
	Subject     string            `json:"subject,omitempty"`
	Body        string            `json:"body"`
	Tags        map[string]string `json:"tags,omitempty"`
}
