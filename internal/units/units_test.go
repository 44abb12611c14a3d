package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{
			name:   "plain integer",
			input:  "100",
			want:   100,
			wantOK: true,
		},
		{
			name:   "decimal",
			input:  "12.5",
			want:   12.5,
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			input:  "  42 ",
			want:   42,
			wantOK: true,
		},
		{
			name:   "very small positive",
			input:  "0.0001",
			want:   0.0001,
			wantOK: true,
		},
		{
			name:   "empty string means not provided",
			input:  "",
			wantOK: false,
		},
		{
			name:   "zero is skipped",
			input:  "0",
			wantOK: false,
		},
		{
			name:   "negative is skipped",
			input:  "-5",
			wantOK: false,
		},
		{
			name:   "non-numeric text",
			input:  "abc",
			wantOK: false,
		},
		{
			name:   "trailing garbage",
			input:  "10x",
			wantOK: false,
		},
		{
			name:   "NaN literal",
			input:  "NaN",
			wantOK: false,
		},
		{
			name:   "infinity literal",
			input:  "+Inf",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-12)
			} else {
				assert.Zero(t, got)
			}
		})
	}
}

func TestPerHundredKm(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		unit    string
		want    float64
		wantErr error
	}{
		{
			name:  "l_100km passes through",
			value: 6.5,
			unit:  "l_100km",
			want:  6.5,
		},
		{
			name:  "km_l is inverted",
			value: 20,
			unit:  "km_l",
			want:  5, // 100 / 20
		},
		{
			name:  "unit is case-insensitive",
			value: 8,
			unit:  "L_100KM",
			want:  8,
		},
		{
			name:    "unknown unit",
			value:   6,
			unit:    "mpg",
			wantErr: ErrInvalidConsumptionUnit,
		},
		{
			name:    "zero consumption",
			value:   0,
			unit:    "km_l",
			wantErr: ErrNonPositiveConsumption,
		},
		{
			name:    "negative consumption",
			value:   -3,
			unit:    "l_100km",
			wantErr: ErrNonPositiveConsumption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PerHundredKm(tt.value, tt.unit)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-10))
	assert.Equal(t, 100.0, ClampPercent(250))
	assert.Equal(t, 20.0, ClampPercent(20))
}

func TestKgToTonnes(t *testing.T) {
	assert.InDelta(t, 0.268, KgToTonnes(268), 1e-12)
}
