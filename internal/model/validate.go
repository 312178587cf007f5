package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConfig marks every scenario validation failure.
var ErrInvalidConfig = errors.New("invalid scenario config")

// ValidationError reports one out-of-range or malformed scenario field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is lets callers match any ValidationError with errors.Is(err, ErrInvalidConfig).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Validate checks every range-constrained field and returns all failures
// joined. Unknown policies and variants are accepted: the engine denies the
// former and the synthesis model gives the latter a fixed baseline.
func (s ScenarioConfig) Validate() error {
	var errs []error
	fail := func(field string, value any, reason string) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Reason: reason})
	}

	if s.Policy == "" {
		fail("policy", s.Policy, "must not be empty")
	}
	if strings.TrimSpace(s.UserID) == "" {
		fail("user_id", s.UserID, "must not be empty")
	}
	if s.RiskProfile == "" {
		fail("risk_profile", s.RiskProfile, "must not be empty")
	}
	if s.Variant == "" {
		fail("zt_variant", s.Variant, "must not be empty")
	}
	if s.NetworkSize <= 0 {
		fail("network_size", s.NetworkSize, "must be a positive integer")
	}
	if !inUnitInterval(s.MaliciousRatio) {
		fail("malicious_ratio", s.MaliciousRatio, "must be within [0,1]")
	}
	if !inUnitInterval(s.AIThreshold) {
		fail("ai_threshold", s.AIThreshold, "must be within [0,1]")
	}
	if _, err := ParseHour(s.AccessTime); err != nil {
		fail("access_time", s.AccessTime, err.Error())
	}

	return errors.Join(errs...)
}

// ParseHour extracts the hour from an HH:MM access time.
func ParseHour(accessTime string) (int, error) {
	hh, mm, ok := strings.Cut(accessTime, ":")
	if !ok {
		return 0, errors.New("must be formatted HH:MM")
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, errors.New("hour must be 00-23")
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, errors.New("minute must be 00-59")
	}
	return hour, nil
}

// NaN fails both comparisons.
func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
