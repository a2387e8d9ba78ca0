package cli

import (
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordhoard/internal"
	"codeberg.org/snonux/wordhoard/internal/cache"
	"codeberg.org/snonux/wordhoard/internal/extract"
	"codeberg.org/snonux/wordhoard/internal/logging"
	"codeberg.org/snonux/wordhoard/internal/lookup"
	"codeberg.org/snonux/wordhoard/internal/processor"
	"codeberg.org/snonux/wordhoard/internal/tracing"
)

func setDefaults() {
	defaults := lookup.DefaultConfig()
	viper.SetDefault("api.dictionary_url", defaults.DictionaryURL)
	viper.SetDefault("api.thesaurus_url", defaults.ThesaurusURL)
	viper.SetDefault("api.timeout", defaults.Timeout)
	viper.SetDefault("api.max_retries", defaults.MaxRetries)
	viper.SetDefault("api.backoff_factor", defaults.BackoffFactor)
	viper.SetDefault("api.call_limit", defaults.CallLimit)

	viper.SetDefault("run.word_delay", processor.DefaultWordDelay)
	viper.SetDefault("run.breaker_threshold", processor.DefaultBreakerThreshold)

	viper.SetDefault("extract.min_word_length", extract.DefaultMinWordLength)

	viper.SetDefault("cache.backend", cache.BackendFiles)
	viper.SetDefault("cache.dir", cache.DefaultDir)

	viper.SetDefault("log.dir", "logs")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("tracing.enabled", false)
}

// LookupConfig returns the API client settings
func LookupConfig() lookup.Config {
	return lookup.Config{
		DictionaryKey: GetDictionaryKey(),
		ThesaurusKey:  GetThesaurusKey(),
		DictionaryURL: viper.GetString("api.dictionary_url"),
		ThesaurusURL:  viper.GetString("api.thesaurus_url"),
		Timeout:       viper.GetDuration("api.timeout"),
		MaxRetries:    viper.GetInt("api.max_retries"),
		BackoffFactor: viper.GetFloat64("api.backoff_factor"),
		CallLimit:     viper.GetInt64("api.call_limit"),
	}
}

// CacheConfig returns the cache backend settings
func CacheConfig() cache.Config {
	return cache.Config{
		Backend:     viper.GetString("cache.backend"),
		Dir:         viper.GetString("cache.dir"),
		SQLitePath:  viper.GetString("cache.sqlite_path"),
		PostgresDSN: viper.GetString("cache.postgres_dsn"),
	}
}

// ProcessorOptions merges the run flags with the run settings
func ProcessorOptions(flags *Flags) processor.Options {
	threshold := viper.GetInt("run.breaker_threshold")
	if threshold < 0 {
		threshold = 0
	}
	return processor.Options{
		StartWord:        flags.StartWord,
		MaxWords:         flags.MaxWords,
		ForceRefresh:     flags.ForceRefresh,
		WordDelay:        viper.GetDuration("run.word_delay"),
		BreakerThreshold: uint32(threshold),
	}
}

// MinWordLength returns the extraction length threshold
func MinWordLength() int {
	return viper.GetInt("extract.min_word_length")
}

// LoggingConfig returns the logger settings
func LoggingConfig() logging.Config {
	return logging.Config{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
		Dir:    viper.GetString("log.dir"),
	}
}

// TracingConfig returns the tracing settings for a session
func TracingConfig(sessionID string) tracing.Config {
	return tracing.Config{
		ServiceName:    "wordhoard",
		ServiceVersion: internal.Version,
		SessionID:      sessionID,
		Enabled:        viper.GetBool("tracing.enabled"),
		OTLPEndpoint:   viper.GetString("tracing.endpoint"),
	}
}

// MetricsFile returns the Prometheus textfile path, empty when disabled
func MetricsFile() string {
	return viper.GetString("metrics.file")
}
