package startup

import (
	"os"
	"strconv"
	"time"

	"wedding-gallery/internal/logging"
)

// fromEnv parses the environment variable key, falling back to def when it
// is unset or does not parse.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logging.Warn("Invalid value for %s: %q, using default: %v", key, raw, def)
		return def
	}
	return v
}

func getEnv(key, def string) string {
	return fromEnv(key, def, func(s string) (string, error) { return s, nil })
}

func getEnvBool(key string, def bool) bool {
	return fromEnv(key, def, strconv.ParseBool)
}

func getEnvInt(key string, def int) int {
	return fromEnv(key, def, strconv.Atoi)
}

func getEnvFloat(key string, def float64) float64 {
	return fromEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	return fromEnv(key, def, parsePositiveDuration)
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil && d <= 0 {
		err = strconv.ErrRange
	}
	return d, err
}

// orDefault returns the config-file value unless it is the zero value.
func orDefault[T comparable](fileValue, def T) T {
	var zero T
	if fileValue == zero {
		return def
	}
	return fileValue
}

func pickBool(fileValue *bool, def bool) bool {
	if fileValue == nil {
		return def
	}
	return *fileValue
}

func pickDuration(fileValue string, def time.Duration) time.Duration {
	if fileValue == "" {
		return def
	}
	d, err := parsePositiveDuration(fileValue)
	if err != nil {
		logging.Warn("Invalid duration in config file: %q, using default: %v", fileValue, def)
		return def
	}
	return d
}
