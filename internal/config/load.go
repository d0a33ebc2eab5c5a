package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the optional YAML settings file.
func LoadFile(filename string) (*File, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", filename, err)
	}

	var f File
	if err := yaml.Unmarshal(fileBytes, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", filename, err)
	}
	return &f, nil
}

// Resolve merges the three configuration sources into Settings using the
// precedence flag > environment > file > default. getenv abstracts the
// process environment so resolution is deterministic in tests. file may be
// nil when no settings file was supplied.
func Resolve(flags Flags, file *File, getenv func(string) string) Settings {
	if file == nil {
		file = &File{}
	}

	pick := func(flagVal, envName, fileVal, def string) string {
		if flagVal != "" {
			return flagVal
		}
		if v := getenv(envName); v != "" {
			return v
		}
		if fileVal != "" {
			return fileVal
		}
		return def
	}

	s := Settings{
		Domain:       pick(flags.Domain, EnvDomain, file.Domain, ""),
		APIKey:       pick(flags.APIKey, EnvAPIKey, file.APIKey, ""),
		AuthMethod:   pick(flags.AuthMethod, EnvAuthMethod, file.AuthMethod, DefaultAuthMethod),
		Referer:      pick(flags.Referer, EnvReferer, file.Referer, ""),
		Token:        pick(flags.Token, EnvToken, file.Token, ""),
		ClientID:     pick(flags.ClientID, EnvClientID, file.ClientID, ""),
		ClientSecret: pick(flags.ClientSecret, EnvClientSecret, file.ClientSecret, ""),
		TokenURL:     pick(flags.TokenURL, EnvTokenURL, file.TokenURL, ""),
		Datum:        pick(flags.Datum, EnvDatum, file.Datum, DefaultDatum),
		MatchLevel:   pick(flags.MatchLevel, EnvMatchLevel, file.MatchLevel, ""),
		LogLevel:     pick(flags.LogLevel, EnvLogLevel, file.LogLevel, DefaultLogLevel),
	}

	// Verification defaults to on. The flag and ZENRIN_VERIFY_SSL=false can
	// each disable it; the file value applies only when neither did.
	s.VerifySSL = true
	if flags.NoVerifySSL {
		s.VerifySSL = false
	} else if strings.EqualFold(getenv(EnvVerifySSL), "false") {
		s.VerifySSL = false
	} else if file.VerifySSL != nil {
		s.VerifySSL = *file.VerifySSL
	}

	return s
}
