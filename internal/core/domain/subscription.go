package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Plan is a subscription tier
type Plan string

const (
	PlanGold     Plan = "Gold"
	PlanSilver   Plan = "Silver"
	PlanPlatinum Plan = "Platinum"
)

// DefaultPlan is used when a create request does not name a plan
const DefaultPlan = PlanGold

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	StatusPending  SubscriptionStatus = "pending"
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusExpired  SubscriptionStatus = "expired"
)

// Valid reports whether s is a known status
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusExpired:
		return true
	}
	return false
}

// PlanCatalog maps each plan to its allowed durations in months.
// It is built once at startup and never mutated.
type PlanCatalog map[Plan][]int

// DefaultPlanCatalog returns the fixed plan/duration table
func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		PlanGold:     {3, 6, 12},
		PlanSilver:   {1, 3, 6},
		PlanPlatinum: {6, 12},
	}
}

// Plans returns the known plan names in a stable order
func (c PlanCatalog) Plans() []Plan {
	plans := make([]Plan, 0, len(c))
	for p := range c {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i] < plans[j] })
	return plans
}

// ValidatePlanDuration fails with "Invalid plan" for unknown plans and with
// "Invalid duration for {plan}. Allowed: ..." when months is not allowed.
func (c PlanCatalog) ValidatePlanDuration(plan Plan, months int) error {
	allowed, ok := c[plan]
	if !ok {
		return NewValidationError("Invalid plan")
	}
	for _, m := range allowed {
		if m == months {
			return nil
		}
	}

	parts := make([]string, len(allowed))
	for i, m := range allowed {
		parts[i] = strconv.Itoa(m)
	}
	return NewValidationError("Invalid duration for %s. Allowed: %s", plan, strings.Join(parts, ", "))
}

// Months is a month count decoded leniently from JSON: whole numbers and
// numeric strings are accepted, anything else (fractions included) decodes
// to 0, which no plan allows.
type Months int

// UnmarshalJSON implements json.Unmarshaler
func (m *Months) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	*m = 0

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = wholeMonths(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = ParseMonths(s)
	}
	return nil
}

// ParseMonths coerces a string to a month count, 0 when not numeric
func ParseMonths(s string) Months {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Months(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return wholeMonths(f)
	}
	return 0
}

// wholeMonths accepts 3.0 but maps 3.9 to 0 rather than truncating
func wholeMonths(f float64) Months {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0
	}
	return Months(int(f))
}

// ComputeEndDate adds months calendar months to start. When the start day
// does not exist in the target month it is clamped to that month's last day,
// so Jan 31 + 1 month is Feb 28 (Feb 29 in leap years).
func ComputeEndDate(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	hh, mm, ss := start.Clock()

	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	if last := daysIn(first.Year(), first.Month(), start.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, start.Nanosecond(), start.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Accepted date layouts for request payloads
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a request date; field names the offending field in the error
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError("Invalid date for %s", field)
}
