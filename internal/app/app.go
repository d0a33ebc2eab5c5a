package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"zenrin-geocode/internal/auth"
	"zenrin-geocode/internal/config"
	"zenrin-geocode/internal/format"
	"zenrin-geocode/internal/geocode"
	"zenrin-geocode/internal/httpclient"
	"zenrin-geocode/internal/logging"
	"zenrin-geocode/internal/output"
)

// Sentinel errors for the application layer. main shows usage for the first
// two before exiting non-zero.
var (
	ErrUsage       = errors.New("usage error")
	ErrMissingArgs = errors.New("missing required configuration")
	ErrBatchFile   = errors.New("batch input file error")
)

// --- Interfaces for testability ---

// geocoder is the client capability the driver needs.
type geocoder interface {
	Geocode(ctx context.Context, address string, opts geocode.Options) geocode.Result
	GeocodeBatch(ctx context.Context, addresses []string, opts geocode.Options) ([]geocode.Result, error)
}

// geocoderFactory builds a geocoder from resolved settings. getenv supplies
// the proxy environment.
type geocoderFactory interface {
	New(ctx context.Context, settings config.Settings, getenv func(string) string) (geocoder, error)
}

// --- Default implementation ---

type defaultGeocoderFactory struct{}

func (defaultGeocoderFactory) New(ctx context.Context, settings config.Settings, getenv func(string) string) (geocoder, error) {
	proxy, err := httpclient.ProxyFromEnv(getenv)
	if err != nil {
		return nil, err
	}
	client := httpclient.NewClient(settings.VerifySSL, proxy)

	token := settings.Token
	if settings.AuthMethod == config.AuthBearer && token == "" && settings.HasClientCredentials() {
		token, err = auth.FetchToken(ctx, settings.ClientID, settings.ClientSecret, settings.TokenURL, client)
		if err != nil {
			return nil, err
		}
		logging.Logf(logging.Info, "Obtained bearer token via OAuth2 client credentials")
	}

	scheme, err := auth.ParseScheme(settings.AuthMethod, settings.Referer, token)
	if err != nil {
		return nil, err
	}
	return geocode.New(settings.Domain, settings.APIKey, scheme, client), nil
}

// --- AppRunner ---

// AppRunner drives one invocation: flag parsing, settings resolution, and
// exactly one of the three run modes.
type AppRunner struct {
	factory geocoderFactory
	getenv  func(string) string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// AppRunnerOpts allows injecting the runner's collaborators in tests.
type AppRunnerOpts struct {
	Factory geocoderFactory
	Getenv  func(string) string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewAppRunner creates a runner with the real client factory and process
// environment and streams.
func NewAppRunner() *AppRunner {
	return NewAppRunnerWithOpts(AppRunnerOpts{})
}

// NewAppRunnerWithOpts creates a runner, filling unset options with the
// process defaults.
func NewAppRunnerWithOpts(opts AppRunnerOpts) *AppRunner {
	r := &AppRunner{
		factory: opts.Factory,
		getenv:  opts.Getenv,
		stdin:   opts.Stdin,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}
	if r.factory == nil {
		r.factory = defaultGeocoderFactory{}
	}
	if r.getenv == nil {
		r.getenv = os.Getenv
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	return r
}

const usageText = `Usage:
  zenrin-geocode [options]

Geocode Japanese addresses with the ZENRIN Maps API.

Options:
  -domain string
        API domain, e.g. web.zmaps-api.com [env: ZENRIN_API_DOMAIN]
  -key string
        API key, sent via x-api-key header [env: ZENRIN_API_KEY]
  -auth-method string
        Authentication method: ip, referer, or bearer [env: ZENRIN_AUTH_METHOD] (default "ip")
  -referer string
        Referer URL, required for referer auth [env: ZENRIN_REFERER]
  -token string
        OAuth 2.0 token, required for bearer auth [env: ZENRIN_TOKEN]
  -client-id, -client-secret, -token-url
        OAuth2 client credentials used to fetch a bearer token when no
        static token is set [env: ZENRIN_CLIENT_ID, ZENRIN_CLIENT_SECRET, ZENRIN_TOKEN_URL]
  -address string
        Single address to geocode
  -batch string
        File containing addresses, one per line
  -output string
        Output file for JSON results
  -interactive
        Interactive mode
  -datum string
        Geodetic system: JGD, TOKYO, or TOKYO_NAVI [env: ZENRIN_DATUM] (default "JGD")
  -match-level string
        Minimum matching hierarchy: TOD, SHK, OAZ, AZC, GIK, or TBN [env: ZENRIN_MATCH_LEVEL]
  -no-verify-ssl
        Disable TLS certificate verification [env: ZENRIN_VERIFY_SSL=false]
  -config string
        Optional YAML settings file (lowest precedence)
  -loglevel string
        Logging level: none, error, warn, info, debug [env: ZENRIN_LOG_LEVEL] (default "info")
  -help
        Show help

Examples:
  zenrin-geocode -address "東京都千代田区淡路町2-101"
  zenrin-geocode -domain web.zmaps-api.com -key KEY -auth-method referer -referer "https://example.com" -address "東京都千代田区淡路町2-101"
  zenrin-geocode -batch addresses.txt -output results.json
  zenrin-geocode -interactive
`

// Usage prints the command-line help to the given writer.
func (a *AppRunner) Usage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// Run parses arguments, resolves and validates settings, and executes one
// run mode. Mode priority: interactive > single address > batch file.
func (a *AppRunner) Run(args []string) error {
	fs := flag.NewFlagSet("zenrin-geocode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var flags config.Flags
	fs.StringVar(&flags.Domain, "domain", "", "API domain")
	fs.StringVar(&flags.APIKey, "key", "", "API key")
	fs.StringVar(&flags.AuthMethod, "auth-method", "", "Authentication method (ip, referer, bearer)")
	fs.StringVar(&flags.Referer, "referer", "", "Referer URL for referer auth")
	fs.StringVar(&flags.Token, "token", "", "OAuth 2.0 token for bearer auth")
	fs.StringVar(&flags.ClientID, "client-id", "", "OAuth2 client id")
	fs.StringVar(&flags.ClientSecret, "client-secret", "", "OAuth2 client secret")
	fs.StringVar(&flags.TokenURL, "token-url", "", "OAuth2 token URL")
	fs.StringVar(&flags.Datum, "datum", "", "Geodetic system (JGD, TOKYO, TOKYO_NAVI)")
	fs.StringVar(&flags.MatchLevel, "match-level", "", "Minimum matching hierarchy")
	fs.BoolVar(&flags.NoVerifySSL, "no-verify-ssl", false, "Disable TLS certificate verification")
	fs.StringVar(&flags.LogLevel, "loglevel", "", "Logging level")

	address := fs.String("address", "", "Single address to geocode")
	batchFile := fs.String("batch", "", "File containing addresses, one per line")
	outputFile := fs.String("output", "", "Output file for JSON results")
	interactive := fs.Bool("interactive", false, "Interactive mode")
	configFile := fs.String("config", "", "Optional YAML settings file")
	helpFlag := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			a.Usage(a.stderr)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *helpFlag {
		a.Usage(a.stderr)
		return nil
	}

	var file *config.File
	if *configFile != "" {
		var err error
		file, err = config.LoadFile(*configFile)
		if err != nil {
			return err
		}
	}

	settings := config.Resolve(flags, file, a.getenv)
	logging.Setup(settings.LogLevel)

	if err := config.Validate(&settings); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingArgs, err)
	}

	ctx := context.Background()
	g, err := a.factory.New(ctx, settings, a.getenv)
	if err != nil {
		return err
	}

	opts := geocode.Options{
		Datum:      settings.Datum,
		MatchLevel: settings.MatchLevel,
	}

	switch {
	case *interactive:
		return a.runInteractive(ctx, g, opts)
	case *address != "":
		return a.runSingle(ctx, g, *address, opts, *outputFile)
	case *batchFile != "":
		return a.runBatch(ctx, g, *batchFile, opts, *outputFile)
	default:
		a.Usage(a.stderr)
		return ErrUsage
	}
}

func (a *AppRunner) runSingle(ctx context.Context, g geocoder, address string, opts geocode.Options, outputPath string) error {
	result := g.Geocode(ctx, address, opts)

	if outputPath != "" {
		if err := output.WriteJSON(outputPath, result); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "結果を %s に保存しました\n", outputPath)
		return nil
	}
	fmt.Fprintln(a.stdout, format.Result(result))
	return nil
}

func (a *AppRunner) runBatch(ctx context.Context, g geocoder, path string, opts geocode.Options, outputPath string) error {
	addresses, err := readAddressFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(a.stderr, "エラー: ファイル '%s' が見つかりません\n", path)
		}
		return fmt.Errorf("%w: %v", ErrBatchFile, err)
	}

	fmt.Fprintf(a.stdout, "%d 件の住所を処理中...\n", len(addresses))

	results, err := g.GeocodeBatch(ctx, addresses, opts)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := output.WriteJSON(outputPath, results); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "結果を %s に保存しました\n", outputPath)
		return nil
	}
	for _, r := range results {
		fmt.Fprintln(a.stdout, format.Result(r))
	}
	return nil
}

// runInteractive reads addresses from stdin until quit/exit/q, EOF, or an
// interrupt. A failed lookup prints its error value and the loop continues.
func (a *AppRunner) runInteractive(ctx context.Context, g geocoder, opts geocode.Options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(a.stdout, "インタラクティブモード (終了するには 'quit' または 'exit' を入力)")
	fmt.Fprintln(a.stdout, strings.Repeat("-", 60))

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(a.stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		fmt.Fprint(a.stdout, "\n住所を入力してください: ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.stdout, "\n終了します")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.stdout)
				return nil
			}
			address := strings.TrimSpace(line)
			if address == "" {
				continue
			}
			switch strings.ToLower(address) {
			case "quit", "exit", "q":
				return nil
			}
			result := g.Geocode(ctx, address, opts)
			fmt.Fprintln(a.stdout, format.Result(result))
		}
	}
}

// readAddressFile loads a batch input file: one address per line, blank
// lines skipped.
func readAddressFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var addresses []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			addresses = append(addresses, line)
		}
	}
	return addresses, nil
}
