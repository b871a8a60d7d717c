package config_test

import (
	"testing"

	"github.com/yogeshsharma140781/Lingoa/internal/config"
)

func TestDiffNoChanges(t *testing.T) {
	t.Parallel()

	old := &config.Config{}
	old.Server.LogLevel = config.LogInfo
	newCfg := &config.Config{}
	newCfg.Server.LogLevel = config.LogInfo

	if d := config.Diff(old, newCfg); d.Changed() {
		t.Errorf("diff = %+v, want no changes", d)
	}
}

func TestDiffLogLevel(t *testing.T) {
	t.Parallel()

	old := &config.Config{}
	old.Server.LogLevel = config.LogInfo
	newCfg := &config.Config{}
	newCfg.Server.LogLevel = config.LogDebug

	d := config.Diff(old, newCfg)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("diff = %+v", d)
	}
}

func TestDiffFillerChance(t *testing.T) {
	t.Parallel()

	old := &config.Config{}
	newCfg := &config.Config{}
	fc := 0.5
	newCfg.Tutor.FillerChance = &fc

	d := config.Diff(old, newCfg)
	if !d.FillerChanceChanged || d.NewFillerChance != 0.5 {
		t.Errorf("diff = %+v", d)
	}
}

func TestDiffUnsetFillerChanceIsDefault(t *testing.T) {
	t.Parallel()

	old := &config.Config{}
	fc := 0.25
	old.Tutor.FillerChance = &fc
	newCfg := &config.Config{}

	// Explicit 0.25 and unset mean the same thing.
	if d := config.Diff(old, newCfg); d.FillerChanceChanged {
		t.Errorf("diff = %+v, want no filler change", d)
	}
}
