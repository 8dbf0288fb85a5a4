package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ala@example.com", NormalizeEmail("  Ala@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestIsMilkID(t *testing.T) {
	for _, id := range []string{"100000", "999999", "123456"} {
		assert.True(t, IsMilkID(id), id)
	}
	for _, id := range []string{"", "12345", "1234567", "12a456", " 123456"} {
		assert.False(t, IsMilkID(id), id)
	}
}

func TestDates(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("tzdata not available")
	}
	ts := time.Date(2024, 7, 1, 10, 5, 3, 0, time.UTC)
	assert.Equal(t, "1.07.2024, 12:05:03", FormatDisplay(ts, warsaw))
	assert.Equal(t, "1.07.2024, 10:05:03", FormatDisplay(ts, nil))

	start := BeginningOfDay(ts.In(warsaw))
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, warsaw), start)
}
