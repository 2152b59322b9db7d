package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPeriod(t *testing.T) {
	for _, p := range AllPeriods {
		assert.True(t, IsValidPeriod(p), p)
	}
	assert.False(t, IsValidPeriod("7m"))
	assert.False(t, IsValidPeriod(""))
	assert.False(t, IsValidPeriod("1H"))
}

func TestStringToDuration(t *testing.T) {
	d, err := StringToDuration("4h")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, d)

	_, err = StringToDuration("2d")
	assert.Error(t, err)
	assert.Equal(t, time.Duration(0), PeriodToDuration("2d"))
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "default movers", in: DefaultMoverPeriods, want: []string{"1h", "4h", "1d"}},
		{name: "spaces and case", in: " 1H , 15m ,, 1w", want: []string{"1h", "15m", "1w"}},
		{name: "empty", in: "  ", want: nil},
		{name: "unknown", in: "1h,7m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPeriodForDisplay(t *testing.T) {
	assert.Equal(t, "1H", FormatPeriodForDisplay("1h"))
}
