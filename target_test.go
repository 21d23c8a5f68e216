package waypoint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTarget(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{"plain", "detail", "detail", nil},
		{"keeps inner space", "user profile", "user profile", nil},
		{"trims", "  home \n", "home", nil},
		{"strips ansi escape", "\x1b[31mred", "[31mred", nil},
		{"strips null", "a\x00b", "ab", nil},
		{"unicode", "café/ñ", "café/ñ", nil},
		{"empty", "", "", ErrInvalidTarget},
		{"only control", "\t\x07", "", ErrInvalidTarget},
		{"invalid utf8", "\xff\xfe", "", ErrInvalidTarget},
		{"too large", strings.Repeat("x", DefaultMaxTargetSize+1), "", ErrTargetTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeTarget(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeTarget_EnvLimit(t *testing.T) {
	t.Setenv(EnvMaxTargetSize, "4")
	_, err := SanitizeTarget("12345")
	assert.ErrorIs(t, err, ErrTargetTooLarge)

	t.Setenv(EnvMaxTargetSize, "nonsense")
	got, err := SanitizeTarget("12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", got)
}
