package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// storage changes require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	FillerChanceChanged bool
	NewFillerChance     float64
}

// Changed reports whether the diff carries any hot-reloadable change.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.FillerChanceChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	oldFC := fillerChanceOf(old)
	newFC := fillerChanceOf(new)
	if oldFC != newFC {
		d.FillerChanceChanged = true
		d.NewFillerChance = newFC
	}

	return d
}

// defaultFillerChance mirrors the turn engine default so an unset field does
// not read as a change.
const defaultFillerChance = 0.25

func fillerChanceOf(cfg *Config) float64 {
	if cfg.Tutor.FillerChance == nil {
		return defaultFillerChance
	}
	return *cfg.Tutor.FillerChance
}
