package config

// Auth methods accepted by the ZENRIN Maps API.
const (
	AuthIP      = "ip"
	AuthReferer = "referer"
	AuthBearer  = "bearer"
)

// Environment variable names consulted when a flag is not set.
const (
	EnvDomain       = "ZENRIN_API_DOMAIN"
	EnvAPIKey       = "ZENRIN_API_KEY"
	EnvAuthMethod   = "ZENRIN_AUTH_METHOD"
	EnvReferer      = "ZENRIN_REFERER"
	EnvToken        = "ZENRIN_TOKEN"
	EnvClientID     = "ZENRIN_CLIENT_ID"
	EnvClientSecret = "ZENRIN_CLIENT_SECRET"
	EnvTokenURL     = "ZENRIN_TOKEN_URL"
	EnvDatum        = "ZENRIN_DATUM"
	EnvMatchLevel   = "ZENRIN_MATCH_LEVEL"
	EnvVerifySSL    = "ZENRIN_VERIFY_SSL"
	EnvLogLevel     = "ZENRIN_LOG_LEVEL"
)

// Built-in defaults applied when neither flag, environment, nor file
// provides a value.
const (
	DefaultAuthMethod = AuthIP
	DefaultDatum      = "JGD"
	DefaultLogLevel   = "info"
)

// Settings is the fully resolved configuration for one invocation. It is
// constructed once by Resolve and treated as read-only afterwards.
type Settings struct {
	Domain       string
	APIKey       string
	AuthMethod   string
	Referer      string
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Datum        string
	MatchLevel   string
	VerifySSL    bool
	LogLevel     string
}

// File mirrors Settings for the optional YAML settings file. All fields are
// optional; file values rank below flags and environment variables.
type File struct {
	Domain       string `yaml:"domain"`
	APIKey       string `yaml:"api_key"`
	AuthMethod   string `yaml:"auth_method"`
	Referer      string `yaml:"referer"`
	Token        string `yaml:"token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
	Datum        string `yaml:"datum"`
	MatchLevel   string `yaml:"match_level"`
	VerifySSL    *bool  `yaml:"verify_ssl"`
	LogLevel     string `yaml:"log_level"`
}

// Flags carries the values parsed from the command line. Empty strings mean
// the flag was not supplied.
type Flags struct {
	Domain       string
	APIKey       string
	AuthMethod   string
	Referer      string
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Datum        string
	MatchLevel   string
	NoVerifySSL  bool
	LogLevel     string
}
