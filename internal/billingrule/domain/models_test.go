package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueOn(t *testing.T) {
	tests := []struct {
		name       string
		billingDay int
		date       time.Time
		want       bool
	}{
		{"matching day", 10, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC), true},
		{"other day", 10, time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC), false},
		{"day 31 clamps to june 30", 31, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), true},
		{"day 31 not due mid-june", 31, time.Date(2026, time.June, 29, 0, 0, 0, 0, time.UTC), false},
		{"day 30 clamps to feb 28", 30, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC), true},
		{"day 29 on leap day", 29, time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := BillingRule{BillingDay: tt.billingDay}
			assert.Equal(t, tt.want, rule.DueOn(tt.date))
		})
	}
}
