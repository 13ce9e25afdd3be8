// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthSequence_NoContinue(t *testing.T) {
	for m := 1; m <= 12; m++ {
		got := MonthSequence(m, false)
		assert.Equal(t, []string{PadMonth(m)}, got, "month %d", m)
	}
}

func TestMonthSequence_Continue(t *testing.T) {
	for m := 1; m <= 12; m++ {
		got := MonthSequence(m, true)
		assert.Len(t, got, 13-m, "month %d", m)
		for i, s := range got {
			assert.Equal(t, PadMonth(m+i), s)
		}
	}
}

func TestMonthSequence_DecemberStops(t *testing.T) {
	assert.Equal(t, []string{"12"}, MonthSequence(12, true))
}

func TestMonthSequence_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		month int
		want  []string
	}{
		{"zero", 0, []string{"00"}},
		{"thirteen", 13, []string{"13"}},
		{"negative", -1, []string{"-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthSequence(tt.month, true))
		})
	}
}

func TestMonthSequence_FullYear(t *testing.T) {
	want := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	assert.Equal(t, want, MonthSequence(1, true))
}
