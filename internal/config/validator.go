package config

import (
	"fmt"
	"net/url"

	apperrors "github.com/TonnyWong1052/shellgen/internal/errors"
)

// Validate checks required keys first, in the order API_KEY, BASE_URL,
// MODEL, then the shape of the optional ones. The first problem found is
// returned so the message always names one specific key.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return apperrors.ErrMissingConfig(EnvAPIKey)
	}
	if c.BaseURL == "" {
		return apperrors.ErrMissingConfig(EnvBaseURL)
	}
	if c.Model == "" {
		return apperrors.ErrMissingConfig(EnvModel)
	}

	if err := validateURL(c.BaseURL); err != nil {
		return apperrors.ErrInvalidConfig(EnvBaseURL, err.Error())
	}

	switch c.Policy {
	case PolicyDetect, PolicyFixed:
	default:
		return apperrors.ErrInvalidConfig(EnvPlatformPolicy,
			fmt.Sprintf("unknown policy %q (expected %q or %q)", c.Policy, PolicyDetect, PolicyFixed))
	}

	return c.validateLogging()
}

func (c *Config) validateLogging() error {
	if !contains(GetValidLogLevels(), c.Logging.Level) {
		return apperrors.ErrInvalidConfig(EnvLogLevel, fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	if !contains(GetValidLogFormats(), c.Logging.Format) {
		return apperrors.ErrInvalidConfig(EnvLogFormat, fmt.Sprintf("unknown format %q", c.Logging.Format))
	}
	if !contains(GetValidLogOutputs(), c.Logging.Output) {
		return apperrors.ErrInvalidConfig(EnvLogOutput, fmt.Sprintf("unknown output %q", c.Logging.Output))
	}
	if c.Logging.Output != LogOutputConsole && c.Logging.LogFile == "" {
		return apperrors.ErrInvalidConfig(EnvLogFile, "log file path is empty")
	}
	return nil
}

// validateURL checks that the base URL is an absolute http(s) URL.
func validateURL(urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("malformed URL: %s", err.Error())
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}
