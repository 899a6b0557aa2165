package engine

import (
	"testing"
	"time"

	"github.com/smallbiznis/scolara/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaults(t *testing.T) {
	var empty Config
	got := empty.withDefaults()
	assert.Equal(t, time.Hour, got.RunInterval)
	assert.Equal(t, 5*time.Minute, got.JobTimeout)
	assert.Equal(t, 2*time.Minute, got.LockTTL)

	custom := Config{RunInterval: 10 * time.Minute}
	got = custom.withDefaults()
	assert.Equal(t, 10*time.Minute, got.RunInterval)
	assert.Equal(t, 5*time.Minute, got.JobTimeout)
}

func TestProvideConfigParsesInterval(t *testing.T) {
	got := ProvideConfig(config.Config{EngineRunInterval: "30m"})
	assert.Equal(t, 30*time.Minute, got.RunInterval)

	// Garbage intervals fall back to the default.
	got = ProvideConfig(config.Config{EngineRunInterval: "soon"})
	assert.Equal(t, time.Hour, got.RunInterval)

	got = ProvideConfig(config.Config{EngineEnabledJobs: []string{"sweep_overdue"}})
	assert.Equal(t, []string{"sweep_overdue"}, got.EnabledJobs)
}

func TestIsJobEnabled(t *testing.T) {
	eng := &Engine{cfg: Config{}}
	assert.True(t, eng.isJobEnabled("execute_due_rules"))

	eng.cfg.EnabledJobs = []string{"sweep_overdue"}
	assert.True(t, eng.isJobEnabled("SWEEP_OVERDUE"))
	assert.False(t, eng.isJobEnabled("execute_due_rules"))
}
