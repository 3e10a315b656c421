package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	days := func(n int) *time.Time {
		d := now.AddDate(0, 0, n)
		return &d
	}

	tests := []struct {
		name     string
		maturity *time.Time
		want     MaturityStatus
	}{
		{"no maturity date", nil, StatusUnknown},
		{"matured today", days(0), StatusMatured},
		{"matured in the past", days(-10), StatusMatured},
		{"one day out", days(1), StatusMaturingSoon},
		{"twenty-nine days out", days(29), StatusMaturingSoon},
		{"exactly thirty days", days(30), StatusMaturingSoon},
		{"thirty-one days", days(31), StatusActive},
		{"far future", days(400), StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.maturity, now))
		})
	}
}

func TestClassifyIsPureReEvaluation(t *testing.T) {
	maturity := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	// The same instrument flips state as the clock moves; nothing is stored.
	assert.Equal(t, StatusActive, Classify(&maturity, maturity.AddDate(0, 0, -31)))
	assert.Equal(t, StatusMaturingSoon, Classify(&maturity, maturity.AddDate(0, 0, -29)))
	assert.Equal(t, StatusMatured, Classify(&maturity, maturity.AddDate(0, 0, 1)))
}
