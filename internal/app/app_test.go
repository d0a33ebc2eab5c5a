package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zenrin-geocode/internal/config"
	"zenrin-geocode/internal/geocode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string, opts geocode.Options) geocode.Result {
	args := m.Called(ctx, address, opts)
	return args.Get(0).(geocode.Result)
}

func (m *mockGeocoder) GeocodeBatch(ctx context.Context, addresses []string, opts geocode.Options) ([]geocode.Result, error) {
	args := m.Called(ctx, addresses, opts)
	results, _ := args.Get(0).([]geocode.Result)
	return results, args.Error(1)
}

type mockFactory struct {
	mock.Mock
	geocoder geocoder
}

func (m *mockFactory) New(ctx context.Context, settings config.Settings, getenv func(string) string) (geocoder, error) {
	args := m.Called(ctx, settings)
	return m.geocoder, args.Error(0)
}

func fakeEnv(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

// newTestRunner wires a runner around the mock geocoder with a base env that
// satisfies validation.
func newTestRunner(g geocoder, env map[string]string, stdin string) (*AppRunner, *bytes.Buffer, *bytes.Buffer) {
	if env == nil {
		env = map[string]string{}
	}
	if _, ok := env[config.EnvDomain]; !ok {
		env[config.EnvDomain] = "web.zmaps-api.com"
	}
	if _, ok := env[config.EnvAPIKey]; !ok {
		env[config.EnvAPIKey] = "test-key"
	}

	factory := &mockFactory{geocoder: g}
	factory.On("New", mock.Anything, mock.Anything).Return(nil)

	var stdout, stderr bytes.Buffer
	runner := NewAppRunnerWithOpts(AppRunnerOpts{
		Factory: factory,
		Getenv:  fakeEnv(env),
		Stdin:   strings.NewReader(stdin),
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	return runner, &stdout, &stderr
}

func itemResult(raw string) geocode.Result {
	return geocode.Result{Raw: json.RawMessage(raw)}
}

// --- Tests ---

func TestRunHelp(t *testing.T) {
	for _, args := range [][]string{{"-help"}, {"--help"}} {
		runner, _, stderr := newTestRunner(nil, nil, "")
		err := runner.Run(args)
		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "Usage:")
	}
}

func TestRunNoModeSelected(t *testing.T) {
	runner, _, stderr := newTestRunner(nil, nil, "")
	err := runner.Run(nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestRunMissingConfiguration(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "Missing Domain",
			env:  map[string]string{config.EnvAPIKey: "k"},
			args: []string{"-address", "東京都"},
		},
		{
			name: "Missing Key",
			env:  map[string]string{config.EnvDomain: "d.example.com"},
			args: []string{"-address", "東京都"},
		},
		{
			name: "Referer Mode Without Referer",
			env:  map[string]string{config.EnvDomain: "d", config.EnvAPIKey: "k"},
			args: []string{"-auth-method", "referer", "-address", "東京都"},
		},
		{
			name: "Bearer Mode Without Token",
			env:  map[string]string{config.EnvDomain: "d", config.EnvAPIKey: "k"},
			args: []string{"-auth-method", "bearer", "-address", "東京都"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &mockFactory{}
			var stdout, stderr bytes.Buffer
			runner := NewAppRunnerWithOpts(AppRunnerOpts{
				Factory: factory,
				Getenv:  fakeEnv(tt.env),
				Stdin:   strings.NewReader(""),
				Stdout:  &stdout,
				Stderr:  &stderr,
			})
			err := runner.Run(tt.args)
			assert.ErrorIs(t, err, ErrMissingArgs)
			factory.AssertNotCalled(t, "New", mock.Anything, mock.Anything)
		})
	}
}

func TestRunSingleAddress(t *testing.T) {
	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "東京都千代田区淡路町2-101", geocode.Options{Datum: "JGD"}).
		Return(itemResult(`{"address":"東京都千代田区淡路町2-101"}`))

	runner, stdout, _ := newTestRunner(g, nil, "")
	err := runner.Run([]string{"-address", "東京都千代田区淡路町2-101"})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "住所: 東京都千代田区淡路町2-101")
	assert.Contains(t, stdout.String(), strings.Repeat("=", 60))
	g.AssertExpectations(t)
}

func TestRunSingleAddressOptionsFromEnv(t *testing.T) {
	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "addr", geocode.Options{Datum: "TOKYO", MatchLevel: "OAZ"}).
		Return(itemResult(`{}`))

	runner, _, _ := newTestRunner(g, map[string]string{
		config.EnvDatum:      "TOKYO",
		config.EnvMatchLevel: "OAZ",
	}, "")
	require.NoError(t, runner.Run([]string{"-address", "addr"}))
	g.AssertExpectations(t)
}

func TestRunSingleAddressFlagBeatsEnv(t *testing.T) {
	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "addr", geocode.Options{Datum: "TOKYO_NAVI"}).
		Return(itemResult(`{}`))

	runner, _, _ := newTestRunner(g, map[string]string{config.EnvDatum: "TOKYO"}, "")
	require.NoError(t, runner.Run([]string{"-address", "addr", "-datum", "TOKYO_NAVI"}))
	g.AssertExpectations(t)
}

func TestRunSingleAddressOutputFile(t *testing.T) {
	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "addr", mock.Anything).
		Return(itemResult(`{"address":"東京都","post_code":"100-0005"}`))

	outPath := filepath.Join(t.TempDir(), "result.json")
	runner, stdout, _ := newTestRunner(g, nil, "")
	require.NoError(t, runner.Run([]string{"-address", "addr", "-output", outPath}))

	assert.Contains(t, stdout.String(), "結果を "+outPath+" に保存しました")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "東京都", got["address"])
	assert.Contains(t, string(data), "東京都")
}

func TestRunBatch(t *testing.T) {
	writeBatchFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "addresses.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("Blank Lines Skipped", func(t *testing.T) {
		path := writeBatchFile(t, "一つ目\n\n  \n二つ目\n")
		g := &mockGeocoder{}
		g.On("GeocodeBatch", mock.Anything, []string{"一つ目", "二つ目"}, mock.Anything).
			Return([]geocode.Result{itemResult(`{"address":"一つ目"}`), itemResult(`{"address":"二つ目"}`)}, nil)

		runner, stdout, _ := newTestRunner(g, nil, "")
		require.NoError(t, runner.Run([]string{"-batch", path}))

		assert.Contains(t, stdout.String(), "2 件の住所を処理中...")
		assert.Contains(t, stdout.String(), "住所: 一つ目")
		assert.Contains(t, stdout.String(), "住所: 二つ目")
		g.AssertExpectations(t)
	})

	t.Run("Empty File Still Issues Request", func(t *testing.T) {
		path := writeBatchFile(t, "\n\n")
		g := &mockGeocoder{}
		g.On("GeocodeBatch", mock.Anything, []string(nil), mock.Anything).
			Return([]geocode.Result{}, nil)

		runner, stdout, _ := newTestRunner(g, nil, "")
		require.NoError(t, runner.Run([]string{"-batch", path}))
		assert.Contains(t, stdout.String(), "0 件の住所を処理中...")
		g.AssertExpectations(t)
	})

	t.Run("Missing File", func(t *testing.T) {
		g := &mockGeocoder{}
		runner, _, stderr := newTestRunner(g, nil, "")
		err := runner.Run([]string{"-batch", filepath.Join(t.TempDir(), "nope.txt")})
		assert.ErrorIs(t, err, ErrBatchFile)
		assert.Contains(t, stderr.String(), "が見つかりません")
		g.AssertNotCalled(t, "GeocodeBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Output File", func(t *testing.T) {
		path := writeBatchFile(t, "一つ目\n")
		outPath := filepath.Join(t.TempDir(), "results.json")
		g := &mockGeocoder{}
		g.On("GeocodeBatch", mock.Anything, mock.Anything, mock.Anything).
			Return([]geocode.Result{itemResult(`{"address":"一つ目"}`)}, nil)

		runner, stdout, _ := newTestRunner(g, nil, "")
		require.NoError(t, runner.Run([]string{"-batch", path, "-output", outPath}))
		assert.Contains(t, stdout.String(), "結果を "+outPath+" に保存しました")

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "一つ目", got[0]["address"])
	})
}

func TestRunInteractive(t *testing.T) {
	t.Run("Geocodes Until Quit", func(t *testing.T) {
		g := &mockGeocoder{}
		g.On("Geocode", mock.Anything, "東京都", mock.Anything).
			Return(itemResult(`{"address":"東京都"}`))

		runner, stdout, _ := newTestRunner(g, nil, "東京都\nquit\n")
		require.NoError(t, runner.Run([]string{"-interactive"}))

		out := stdout.String()
		assert.Contains(t, out, "インタラクティブモード")
		assert.Contains(t, out, "住所を入力してください")
		assert.Contains(t, out, "住所: 東京都")
		g.AssertExpectations(t)
	})

	t.Run("Blank Input Skipped", func(t *testing.T) {
		g := &mockGeocoder{}
		runner, _, _ := newTestRunner(g, nil, "\n   \nexit\n")
		require.NoError(t, runner.Run([]string{"-interactive"}))
		g.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error Values Printed And Loop Continues", func(t *testing.T) {
		g := &mockGeocoder{}
		g.On("Geocode", mock.Anything, "bad", mock.Anything).
			Return(geocode.Result{Err: &geocode.APIError{Message: "No results found"}})
		g.On("Geocode", mock.Anything, "good", mock.Anything).
			Return(itemResult(`{"address":"good"}`))

		runner, stdout, _ := newTestRunner(g, nil, "bad\ngood\nq\n")
		require.NoError(t, runner.Run([]string{"-interactive"}))

		out := stdout.String()
		assert.Contains(t, out, "エラー: No results found")
		assert.Contains(t, out, "住所: good")
	})

	t.Run("EOF Ends Loop", func(t *testing.T) {
		g := &mockGeocoder{}
		runner, _, _ := newTestRunner(g, nil, "")
		require.NoError(t, runner.Run([]string{"-interactive"}))
	})
}

func TestRunModePriority(t *testing.T) {
	// Interactive wins over address and batch.
	g := &mockGeocoder{}
	runner, stdout, _ := newTestRunner(g, nil, "quit\n")
	require.NoError(t, runner.Run([]string{"-interactive", "-address", "addr", "-batch", "f.txt"}))
	assert.Contains(t, stdout.String(), "インタラクティブモード")
	g.AssertNotCalled(t, "GeocodeBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain: file.example.com\napi_key: file-key\n"), 0644))

	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "addr", mock.Anything).Return(itemResult(`{}`))

	factory := &mockFactory{geocoder: g}
	factory.On("New", mock.Anything, mock.MatchedBy(func(s config.Settings) bool {
		return s.Domain == "file.example.com" && s.APIKey == "file-key"
	})).Return(nil)

	var stdout, stderr bytes.Buffer
	runner := NewAppRunnerWithOpts(AppRunnerOpts{
		Factory: factory,
		Getenv:  fakeEnv(nil),
		Stdin:   strings.NewReader(""),
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	require.NoError(t, runner.Run([]string{"-config", path, "-address", "addr"}))
	factory.AssertExpectations(t)
}
