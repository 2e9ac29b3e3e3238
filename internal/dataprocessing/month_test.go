package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthName(t *testing.T) {
	assert.Equal(t, "January", MonthName(1))
	assert.Equal(t, "December", MonthName(12))
	assert.Equal(t, "", MonthName(0))
	assert.Equal(t, "", MonthName(13))
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, MonthIndex("January"))
	assert.Equal(t, 11, MonthIndex("December"))
	assert.Equal(t, -1, MonthIndex("march"))
	assert.Equal(t, -1, MonthIndex(""))

	assert.True(t, IsMonthName("April"))
	assert.False(t, IsMonthName("Apr"))
}

func TestAllMonths(t *testing.T) {
	months := AllMonths()
	assert.Equal(t, MonthOrder, months)

	months[0] = "changed"
	assert.Equal(t, "January", MonthOrder[0])
}
