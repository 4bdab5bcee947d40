package config

import "time"

// Config holds comparison engine settings.
// Stored at: ./lcp-compare.yaml (or the path handed to NewManager).
type Config struct {
	Compare CompareCfg `mapstructure:"compare" yaml:"compare"`
	Storage StorageCfg `mapstructure:"storage" yaml:"storage"`
}

// CompareCfg tunes the comparison run itself.
type CompareCfg struct {
	// MaxWorkers bounds concurrent fetch+extract, sized to what the
	// storage backend tolerates.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
	// RetryAttempts is how often a transient fetch failure is retried.
	RetryAttempts uint `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	// Timeout caps one whole comparison call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RulesFile optionally overrides the built-in heading rules.
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
}

// StorageCfg locates the local document store used by tooling; the
// production bucket is injected by the service layer instead.
type StorageCfg struct {
	Root string `mapstructure:"root" yaml:"root"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Compare: CompareCfg{
			MaxWorkers:    4,
			RetryAttempts: 3,
			RetryDelay:    500 * time.Millisecond,
			Timeout:       2 * time.Minute,
		},
		Storage: StorageCfg{},
	}
}

// normalize backfills zero values with defaults so a sparse config file
// never produces an unusable engine.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Compare.MaxWorkers <= 0 {
		c.Compare.MaxWorkers = def.Compare.MaxWorkers
	}
	if c.Compare.RetryAttempts == 0 {
		c.Compare.RetryAttempts = def.Compare.RetryAttempts
	}
	if c.Compare.RetryDelay <= 0 {
		c.Compare.RetryDelay = def.Compare.RetryDelay
	}
	if c.Compare.Timeout <= 0 {
		c.Compare.Timeout = def.Compare.Timeout
	}
}
