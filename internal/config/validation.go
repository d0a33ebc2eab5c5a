package config

import (
	"fmt"
	"strings"
)

var (
	knownAuthMethods = []string{AuthIP, AuthReferer, AuthBearer}
	knownDatums      = []string{"JGD", "TOKYO", "TOKYO_NAVI"}
	knownMatchLevels = []string{"TOD", "SHK", "OAZ", "AZC", "GIK", "TBN"}
)

func isValidEnumValue(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// Validate checks the resolved settings before any client is constructed or
// any network activity occurs. All problems are reported together.
func Validate(s *Settings) error {
	var allErrors []string

	if s.Domain == "" {
		allErrors = append(allErrors, fmt.Sprintf("- domain is required (flag -domain or %s)", EnvDomain))
	}
	if s.APIKey == "" {
		allErrors = append(allErrors, fmt.Sprintf("- API key is required (flag -key or %s)", EnvAPIKey))
	}

	if !isValidEnumValue(s.AuthMethod, knownAuthMethods) {
		allErrors = append(allErrors, fmt.Sprintf("- auth method '%s' is not one of %s",
			s.AuthMethod, strings.Join(knownAuthMethods, ", ")))
	}

	switch s.AuthMethod {
	case AuthReferer:
		if s.Referer == "" {
			allErrors = append(allErrors, fmt.Sprintf("- referer is required for referer authentication (flag -referer or %s)", EnvReferer))
		}
	case AuthBearer:
		if s.Token == "" && !s.HasClientCredentials() {
			allErrors = append(allErrors, fmt.Sprintf(
				"- bearer authentication requires a token (flag -token or %s) or client credentials (-client-id, -client-secret, -token-url)", EnvToken))
		}
	}

	if !isValidEnumValue(s.Datum, knownDatums) {
		allErrors = append(allErrors, fmt.Sprintf("- datum '%s' is not one of %s",
			s.Datum, strings.Join(knownDatums, ", ")))
	}
	if s.MatchLevel != "" && !isValidEnumValue(s.MatchLevel, knownMatchLevels) {
		allErrors = append(allErrors, fmt.Sprintf("- match level '%s' is not one of %s",
			s.MatchLevel, strings.Join(knownMatchLevels, ", ")))
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	return nil
}

// HasClientCredentials reports whether the full OAuth2 client-credentials
// trio is configured.
func (s *Settings) HasClientCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.TokenURL != ""
}
