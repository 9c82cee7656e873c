package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbarrick/exl/data"
)

func TestLoadAppliesPerBlockOverrides(t *testing.T) {
	raw := map[string]interface{}{
		"data": map[string]interface{}{
			"initial_size": 1024,
			"strategy":     "fixed",
			"increment":    64,
		},
	}
	settings, err := Load(raw)
	require.NoError(t, err)

	assert.Equal(t, 1024, settings[4].InitialSize) // blockData index
	assert.Equal(t, data.FixedIncrement, settings[4].Strategy)
	assert.Equal(t, 64, settings[4].Increment)

	// Untouched blocks keep the defaults.
	assert.Equal(t, data.DefaultSettings(), settings[0])
}

func TestLoadWithNoOverridesReturnsDefaults(t *testing.T) {
	settings, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, data.DefaultBlockSettings(), settings)
}
