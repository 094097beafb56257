package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	logLevels    = []string{"debug", "info", "warn", "warning", "error"}
	postStatuses = []string{"draft", "pending", "private", "publish", "future"}
)

// Validate checks the structural validity of a Config after defaults have
// been applied. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != supportedConfigFormat {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: %q)", cfg.Version, supportedConfigFormat))
	}

	if !oneOf(cfg.LogLevel, logLevels) {
		errs = append(errs, fmt.Errorf("config: log_level %q must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", ")))
	}

	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateGenerator(&cfg.Generator)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	return errors.Join(errs...)
}

func validateSchedule(s *ScheduleConfig) []error {
	var errs []error
	if s.IntervalHours <= 0 || s.IntervalHours > MaxIntervalHours {
		errs = append(errs, fmt.Errorf("config: schedule.interval_hours must be between 1 and %d, got %d", MaxIntervalHours, s.IntervalHours))
	}
	if s.WordCount < MinWordCount || s.WordCount > MaxWordCount {
		errs = append(errs, fmt.Errorf("config: schedule.word_count must be between %d and %d, got %d", MinWordCount, MaxWordCount, s.WordCount))
	}
	if !oneOf(s.PostStatus, postStatuses) {
		errs = append(errs, fmt.Errorf("config: schedule.post_status %q must be one of %s", s.PostStatus, strings.Join(postStatuses, ", ")))
	}
	for i, id := range s.Categories {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("config: schedule.categories[%d]: invalid id %d", i, id))
		}
	}
	for i, id := range s.Tags {
		if id <= 0 {
			errs = append(errs, fmt.Errorf("config: schedule.tags[%d]: invalid id %d", i, id))
		}
	}
	return errs
}

func validateGenerator(g *GeneratorConfig) []error {
	var errs []error
	if g.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("config: generator.max_tokens must not be negative, got %d", g.MaxTokens))
	}
	if g.BaseURL != "" {
		if u, err := url.Parse(g.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: generator.base_url %q is not an absolute URL", g.BaseURL))
		}
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []error {
	if t.OTLPEndpoint == "" {
		return nil
	}
	if strings.Contains(t.OTLPEndpoint, "/") && !strings.HasPrefix(t.OTLPEndpoint, "http") {
		return []error{fmt.Errorf("config: telemetry.otlp_endpoint %q must be host:port or a URL", t.OTLPEndpoint)}
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
