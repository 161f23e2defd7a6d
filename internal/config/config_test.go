package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresNarratorCredentials(t *testing.T) {
	t.Setenv("NARRATOR_API_KEY", "")
	t.Setenv("NARRATOR_MODEL", "")

	_, err := New()
	assert.ErrorIs(t, err, ErrMissingNarrator)
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("NARRATOR_API_KEY", "secret")
	t.Setenv("NARRATOR_MODEL", "some/model")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "main_adventure", cfg.DefaultRoom)
	assert.Equal(t, 10*time.Second, cfg.NarratorTimeout)
	assert.Equal(t, 500, cfg.NarratorMaxTokens)
	assert.InDelta(t, 0.8, cfg.NarratorTemperature, 0.001)
	assert.Contains(t, cfg.NarratorURL, "openrouter.ai")
}

func TestNewReadsOverrides(t *testing.T) {
	t.Setenv("NARRATOR_API_KEY", "secret")
	t.Setenv("NARRATOR_MODEL", "some/model")
	t.Setenv("NARRATOR_TIMEOUT", "3s")
	t.Setenv("NARRATOR_MAX_TOKENS", "128")
	t.Setenv("DEFAULT_ROOM", "the_keep")
	t.Setenv("ADDR", ":8080")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.NarratorTimeout)
	assert.Equal(t, 128, cfg.NarratorMaxTokens)
	assert.Equal(t, "the_keep", cfg.DefaultRoom)
	assert.Equal(t, ":8080", cfg.Addr)
}
