package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

var ErrEnvNotSet = errors.New("environment variable is not set")

// =============================================================================
// Required Environment Variables
// =============================================================================

// MustGetEnvString panics when the variable is missing or blank.
func MustGetEnvString(envName string) string {
	v, err := GetEnvString(envName)
	if err != nil {
		panic(fmt.Sprintf("REQUIRED environment variable missing or empty: %s", envName))
	}
	return v
}

// =============================================================================
// Environment Variables with Defaults
// =============================================================================

func GetEnvStringOrDefault(envName, defaultValue string) string {
	v, err := GetEnvString(envName)
	if err != nil {
		return defaultValue
	}
	return v
}

func GetEnvBoolOrDefault(envName string, defaultValue bool) bool {
	v, err := GetEnvBool(envName)
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvIntOrDefault also falls back when the parsed value is below minValue.
func GetEnvIntOrDefault(envName string, defaultValue int, minValue ...int) int {
	v, err := GetEnvInt(envName)
	if err != nil {
		return defaultValue
	}
	if len(minValue) > 0 && v < minValue[0] {
		return defaultValue
	}
	return v
}

func GetEnvDurationOrDefault(envName string, defaultValue time.Duration) time.Duration {
	v, err := GetEnvDuration(envName)
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}

// =============================================================================
// Core Getters
// =============================================================================

func SanitizeEnv(envName string) (string, error) {
	if len(envName) == 0 {
		return "", errors.New("environment variable name should not be empty")
	}

	retValue := strings.TrimSpace(os.Getenv(envName))
	if len(retValue) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEnvNotSet, envName)
	}

	return retValue, nil
}

func GetEnvString(envName string) (string, error) {
	return SanitizeEnv(envName)
}

func GetEnvBool(envName string) (bool, error) {
	envValue, err := SanitizeEnv(envName)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(envValue)
}

func GetEnvInt(envName string) (int, error) {
	envValue, err := SanitizeEnv(envName)
	if err != nil {
		return 0, err
	}

	retValue, err := strconv.ParseInt(envValue, 0, 0)
	if err != nil {
		return 0, err
	}

	return int(retValue), nil
}

func GetEnvDuration(envName string) (time.Duration, error) {
	envValue, err := SanitizeEnv(envName)
	if err != nil {
		return 0, err
	}
	return time.ParseDuration(envValue)
}
