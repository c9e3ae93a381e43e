package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidatePlanDuration_AllowedDurations(t *testing.T) {
	catalog := DefaultPlanCatalog()

	for plan, allowed := range catalog {
		for _, months := range allowed {
			assert.NoError(t, catalog.ValidatePlanDuration(plan, months), "%s/%d", plan, months)
		}
	}
}

func TestValidatePlanDuration_RejectsOtherDurations(t *testing.T) {
	catalog := DefaultPlanCatalog()

	tests := []struct {
		plan    Plan
		months  int
		message string
	}{
		{PlanGold, 4, "Invalid duration for Gold. Allowed: 3, 6, 12"},
		{PlanGold, 1, "Invalid duration for Gold. Allowed: 3, 6, 12"},
		{PlanSilver, 12, "Invalid duration for Silver. Allowed: 1, 3, 6"},
		{PlanPlatinum, 3, "Invalid duration for Platinum. Allowed: 6, 12"},
		{PlanPlatinum, 0, "Invalid duration for Platinum. Allowed: 6, 12"},
		{PlanSilver, -1, "Invalid duration for Silver. Allowed: 1, 3, 6"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := catalog.ValidatePlanDuration(tt.plan, tt.months)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidatePlanDuration_UnknownPlan(t *testing.T) {
	catalog := DefaultPlanCatalog()

	for _, plan := range []Plan{"Bronze", "gold", "", "PLATINUM"} {
		for _, months := range []int{1, 3, 6, 12} {
			err := catalog.ValidatePlanDuration(plan, months)
			require.Error(t, err)
			assert.Equal(t, "Invalid plan", err.Error())
		}
	}
}

func TestMonths_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *Months
	}{
		{"number", `{"m": 6}`, monthsPtr(6)},
		{"numeric string", `{"m": "12"}`, monthsPtr(12)},
		{"whole float", `{"m": 3.0}`, monthsPtr(3)},
		{"fraction", `{"m": 3.9}`, monthsPtr(0)},
		{"fractional string", `{"m": "3.9"}`, monthsPtr(0)},
		{"exponent", `{"m": 1.2e1}`, monthsPtr(12)},
		{"non numeric string", `{"m": "six"}`, monthsPtr(0)},
		{"bool", `{"m": true}`, monthsPtr(0)},
		{"null", `{"m": null}`, nil},
		{"absent", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				M *Months `json:"m"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &payload))
			assert.Equal(t, tt.want, payload.M)
		})
	}
}

func TestParseMonths(t *testing.T) {
	assert.Equal(t, Months(6), ParseMonths(" 6 "))
	assert.Equal(t, Months(12), ParseMonths("12.0"))
	assert.Equal(t, Months(0), ParseMonths("3.9"))
	assert.Equal(t, Months(0), ParseMonths("six"))
	assert.Equal(t, Months(0), ParseMonths(""))
}

func monthsPtr(n int) *Months {
	m := Months(n)
	return &m
}

func TestComputeEndDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"three months", date(2025, 1, 15), 3, date(2025, 4, 15)},
		{"six months", date(2025, 1, 1), 6, date(2025, 7, 1)},
		{"crosses year", date(2025, 1, 1), 12, date(2026, 1, 1)},
		{"clamps to february", date(2025, 1, 31), 1, date(2025, 2, 28)},
		{"clamps to leap day", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamps to thirty days", date(2025, 3, 31), 6, date(2025, 9, 30)},
		{"leap day plus a year", date(2024, 2, 29), 12, date(2025, 2, 28)},
		{"zero months", date(2025, 5, 20), 0, date(2025, 5, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeEndDate(tt.start, tt.months))
		})
	}
}

func TestComputeEndDate_Deterministic(t *testing.T) {
	start := date(2025, 8, 31)
	first := ComputeEndDate(start, 6)
	second := ComputeEndDate(start, 6)
	assert.Equal(t, first, second)
	assert.Equal(t, date(2026, 2, 28), first)
}

func TestComputeEndDate_KeepsClock(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, 1, 15, 10, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 4, 15, 10, 30, 0, 0, loc), ComputeEndDate(start, 3))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("startDate", "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 15), got)

	got, err = ParseDate("startDate", "2025-01-15T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(date(2025, 1, 15)))

	_, err = ParseDate("endDate", "15/01/2025")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Invalid date for endDate", err.Error())
}

func TestSubscriptionStatus_Valid(t *testing.T) {
	for _, s := range []SubscriptionStatus{StatusPending, StatusActive, StatusInactive, StatusExpired} {
		assert.True(t, s.Valid())
	}
	assert.False(t, SubscriptionStatus("cancelled").Valid())
	assert.False(t, SubscriptionStatus("").Valid())
}
