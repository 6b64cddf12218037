package junction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEstimator(t *testing.T) {
	t.Run("accepts ordered thresholds", func(t *testing.T) {
		est, err := NewEstimator(10, 20)
		require.NoError(t, err)
		assert.Equal(t, 10, est.LowMax)
		assert.Equal(t, 20, est.HighMin)
	})

	t.Run("rejects non-positive lowMax", func(t *testing.T) {
		_, err := NewEstimator(0, 20)
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "lowMax", cfgErr.Field)
	})

	t.Run("rejects highMin not above lowMax", func(t *testing.T) {
		_, err := NewEstimator(10, 10)
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "highMin", cfgErr.Field)
	})
}

func TestEstimatorLevel(t *testing.T) {
	est, err := NewEstimator(10, 20)
	require.NoError(t, err)

	t.Run("buckets counts by threshold", func(t *testing.T) {
		cases := []struct {
			count int
			want  CongestionLevel
		}{
			{0, Low},
			{9, Low},
			{10, Medium},
			{19, Medium},
			{20, High},
			{1000, High},
		}
		for _, tc := range cases {
			got, err := est.Level(tc.count)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "count %d", tc.count)
		}
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := est.Level(-1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidMeasurement))
	})

	t.Run("mapping is monotonic non-decreasing", func(t *testing.T) {
		prev := Low
		for count := 0; count <= 50; count++ {
			level, err := est.Level(count)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, int(level), int(prev), "count %d", count)
			prev = level
		}
	})
}
