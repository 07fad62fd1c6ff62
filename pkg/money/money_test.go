package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"0.00", 0},
		{"1", 100},
		{"12.5", 1250},
		{"123.45", 12345},
		{".99", 99},
		{"-5.25", -525},
		{"+10", 1000},
		{" 470.00 ", 47000},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", " ", "-", ".", "1.234", "12,34", "abc", "1.2.3"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.00", Format(0))
	assert.Equal(t, "123.45", Format(12345))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "-12.50", Format(-1250))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 99, 100, 12345, -525, 47000} {
		got, err := Parse(Format(v))
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestLine(t *testing.T) {
	total, err := Line(2500, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), total)

	total, err = Line(0, 10)
	assert.NoError(t, err)
	assert.Zero(t, total)

	_, err = Line(math.MaxInt64/2, 3)
	assert.ErrorIs(t, err, ErrOverflow)
}
