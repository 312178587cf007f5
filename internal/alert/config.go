// Package alert posts access-decision events to webhooks.
package alert

// Event names an alert can subscribe to.
const (
	EventDenied          = "denied"
	EventUnauthenticated = "unauthenticated"
	EventGranted         = "granted"
	EventFallback        = "risk_fallback"
)

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["denied", "unauthenticated", "risk_fallback"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp  int64   `json:"timestamp"`
	User       string  `json:"user"`
	Policy     string  `json:"policy"`
	Variant    string  `json:"zt_variant"`
	Outcome    string  `json:"outcome"`
	Risk       float64 `json:"risk"`
	HTTPStatus int     `json:"http_status"`
	Reason     string  `json:"reason,omitempty"`
}
