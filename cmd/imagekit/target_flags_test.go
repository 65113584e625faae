package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTargetFlags(t *testing.T, args ...string) *targetFlags {
	t.Helper()
	f := &targetFlags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestTargetFlagsQuality(t *testing.T) {
	t.Run("unset leaves quality to the defaults", func(t *testing.T) {
		specs := parseTargetFlags(t, "--format", "jpeg").specs()
		require.Len(t, specs, 1)
		assert.Nil(t, specs[0].Quality)
	})

	t.Run("zero is passed through", func(t *testing.T) {
		specs := parseTargetFlags(t, "--format", "jpeg,webp", "--quality", "0").specs()
		require.Len(t, specs, 2)
		for _, s := range specs {
			require.NotNil(t, s.Quality)
			assert.Equal(t, 0.0, *s.Quality)
		}
	})

	t.Run("explicit value", func(t *testing.T) {
		specs := parseTargetFlags(t, "--quality", "0.4").specs()
		require.Len(t, specs, 1)
		assert.Equal(t, 0.4, *specs[0].Quality)
	})
}
