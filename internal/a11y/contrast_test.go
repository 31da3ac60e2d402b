package a11y

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContrastRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"#000000", "#FFFFFF", 21},
		{"#FFFFFF", "#FFFFFF", 1},
		{"#FFFFFF", "#3B82F6", 3.68},
		{"#4B5563", "#FFFFFF", 7.56},
		{"#9CA3AF", "#fff", 2.54},
	}

	for _, tt := range tests {
		got, err := ContrastRatio(tt.a, tt.b)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 0.01, "%s on %s", tt.a, tt.b)

		swapped, err := ContrastRatio(tt.b, tt.a)
		require.NoError(t, err)
		assert.InDelta(t, got, swapped, 1e-12)
	}
}

func TestRelativeLuminanceLinearizesChannels(t *testing.T) {
	// Direct weighting of the normalized channels would give 0.502.
	got, err := RelativeLuminance("#808080")
	require.NoError(t, err)
	assert.InDelta(t, 0.2159, got, 0.0005)

	ratio, err := ContrastRatio("#4B5563", "#FFFFFF")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ratio, MinContrastRatio)
}

func TestContrastRatioInvalid(t *testing.T) {
	for _, c := range []string{"", "#12", "#GGGGGG", "blue"} {
		_, err := ContrastRatio(c, "#FFFFFF")
		assert.Error(t, err, c)
	}
}

func TestValidateColorContrast(t *testing.T) {
	first := ValidateColorContrast()

	var failing []string
	for _, v := range first.Violations {
		failing = append(failing, v.Name)
		assert.Less(t, v.Ratio, MinContrastRatio)
		assert.False(t, v.Passes)
	}
	assert.ElementsMatch(t, []string{"primary-button", "placeholder"}, failing)
	assert.Len(t, first.PassedCombinations, len(Palette)-2)
	for _, p := range first.PassedCombinations {
		assert.GreaterOrEqual(t, p.Ratio, MinContrastRatio)
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ValidateColorContrast())
	}
}

func TestEvaluateContrastError(t *testing.T) {
	_, err := EvaluateContrast([]ColorPair{{Name: "broken", Text: "#zzz", Background: "#FFF"}})
	assert.ErrorContains(t, err, "broken")
}
