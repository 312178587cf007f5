package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event Event) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("ztbench: access %s", event.Outcome),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*User:* %s", event.User)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Policy:* %s", event.Policy)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Variant:* %s", event.Variant)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Risk:* %.3f (%s)", event.Risk, riskLabel(event.Risk))},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "info"
	switch {
	case event.Outcome == EventUnauthenticated:
		severity = "error"
	case event.Risk >= 0.7:
		severity = "critical"
	case event.Outcome == EventDenied:
		severity = "warning"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("ztbench %s: %s via %s", event.Outcome, event.User, event.Policy),
			"severity": severity,
			"source":   "ztbench",
			"custom_details": map[string]any{
				"policy":      event.Policy,
				"zt_variant":  event.Variant,
				"risk":        event.Risk,
				"http_status": event.HTTPStatus,
				"reason":      event.Reason,
			},
		},
	}
	return json.Marshal(payload)
}

func riskLabel(risk float64) string {
	switch {
	case risk < 0.3:
		return "low"
	case risk < 0.6:
		return "elevated"
	case risk < 0.9:
		return "high"
	default:
		return "critical"
	}
}
