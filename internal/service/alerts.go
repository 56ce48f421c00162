package service

import "time"

type AlertType string

const (
	AlertSuccess AlertType = "success"
	AlertError   AlertType = "error"
)

// AlertTTL is how long a transient alert stays on screen.
const AlertTTL = 3 * time.Second

// Alert is a transient, auto-dismissing notification.
type Alert struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	TTLMillis int64     `json:"ttlMillis"`
}

func successAlert(message string) Alert {
	return Alert{Type: AlertSuccess, Message: message, TTLMillis: AlertTTL.Milliseconds()}
}

func errorAlert(message string) Alert {
	return Alert{Type: AlertError, Message: message, TTLMillis: AlertTTL.Milliseconds()}
}

// Redirect tells the UI to navigate to Path once AfterMillis has elapsed.
type Redirect struct {
	Path        string `json:"path"`
	AfterMillis int64  `json:"afterMillis"`
}

func redirectTo(path string, after time.Duration) *Redirect {
	if after < 0 {
		after = 0
	}
	return &Redirect{Path: path, AfterMillis: after.Milliseconds()}
}

// Action is a user action a view currently offers.
type Action string

const (
	ActionPay      Action = "pay"
	ActionCancel   Action = "cancel"
	ActionPayNow   Action = "pay_now"
	ActionPayLater Action = "pay_later"
)
