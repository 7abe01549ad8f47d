package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// JobsConfig holds the background job schedule, read from an optional YAML file
type JobsConfig struct {
	Reconciler     JobConfig       `yaml:"reconciler"`
	MessageRetry   JobConfig       `yaml:"message_retry"`
	MessageCleanup JobConfig       `yaml:"message_cleanup"`
	Retention      RetentionConfig `yaml:"retention"`
}

type JobConfig struct {
	Enabled     *bool         `yaml:"enabled"`
	IntervalRaw string        `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

type RetentionConfig struct {
	JobConfig `yaml:",inline"`
	Rules     map[string]RetentionRuleConfig `yaml:"rules"`
}

// RetentionRuleConfig overrides a single retention rule. Grace is only
// honoured by rules that keep rows for a period after they finish.
type RetentionRuleConfig struct {
	Enabled  *bool         `yaml:"enabled"`
	GraceRaw string        `yaml:"grace"`
	Grace    time.Duration `yaml:"-"`
}

// DefaultJobsConfig returns the schedule used when no YAML file is configured
func DefaultJobsConfig() JobsConfig {
	return JobsConfig{
		Reconciler:     JobConfig{Interval: time.Minute},
		MessageRetry:   JobConfig{Interval: time.Minute},
		MessageCleanup: JobConfig{Interval: time.Hour},
		Retention:      RetentionConfig{JobConfig: JobConfig{Interval: time.Hour}},
	}
}

// LoadJobsConfig reads the job schedule from path
func LoadJobsConfig(path string) (JobsConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return JobsConfig{}, fmt.Errorf("config: read jobs file %s: %w", path, err)
	}

	var cfg JobsConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return JobsConfig{}, fmt.Errorf("config: parse jobs yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return JobsConfig{}, err
	}

	return cfg, nil
}

// IsEnabled reports whether the job should be registered; jobs are on unless disabled
func (j JobConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// IsEnabled reports whether the rule should run; rules are on unless disabled
func (r RetentionRuleConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

func (c *JobsConfig) validateAndNormalize() error {
	defaults := DefaultJobsConfig()

	if err := c.Reconciler.normalize("reconciler", defaults.Reconciler.Interval); err != nil {
		return err
	}
	if err := c.MessageRetry.normalize("message_retry", defaults.MessageRetry.Interval); err != nil {
		return err
	}
	if err := c.MessageCleanup.normalize("message_cleanup", defaults.MessageCleanup.Interval); err != nil {
		return err
	}
	if err := c.Retention.normalize("retention", defaults.Retention.Interval); err != nil {
		return err
	}

	for name, rule := range c.Retention.Rules {
		grace, err := parseDurationAllowEmpty(rule.GraceRaw)
		if err != nil {
			return fmt.Errorf("config: retention.rules.%s.grace: %w", name, err)
		}
		if grace < 0 {
			return fmt.Errorf("config: retention.rules.%s.grace must not be negative", name)
		}
		if rule.GraceRaw != "" {
			rule.Grace = grace
		}
		c.Retention.Rules[name] = rule
	}

	return nil
}

func (j *JobConfig) normalize(name string, fallback time.Duration) error {
	if j.IntervalRaw == "" {
		if j.Interval == 0 {
			j.Interval = fallback
		}
		return nil
	}

	interval, err := time.ParseDuration(j.IntervalRaw)
	if err != nil {
		return fmt.Errorf("config: %s.interval: %w", name, err)
	}
	if interval <= 0 {
		return fmt.Errorf("config: %s.interval must be positive", name)
	}
	j.Interval = interval
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
