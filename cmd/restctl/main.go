package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/GriffinCanCode/restmanager/internal/config"
	"github.com/GriffinCanCode/restmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/restmanager/internal/logging"
	"github.com/GriffinCanCode/restmanager/internal/rest/manager"
	"github.com/GriffinCanCode/restmanager/internal/rest/params"
	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	errNetwork = errors.New("network error")
	errParsing = errors.New("parsing error")
)

var exampleUsage = strings.TrimSpace(`
  restctl --base-url https://api.example.com /self.json
  restctl --method post --param name=Jane --param role=admin /users
  restctl --method put --data @payload.json --content-type application/json /docs/1
  restctl --config rest.yaml --raw /export.csv
`)

type cliOptions struct {
	configPath  string
	baseURL     string
	username    string
	password    string
	userAgent   string
	method      string
	params      []string
	data        string
	contentType string
	raw         bool
	timeout     time.Duration
	verbose     bool
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts cliOptions

	root := &cobra.Command{
		Use:          "restctl [flags] RESOURCE",
		Short:        "Send one REST request and print the reply",
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				opts.timeout = 0
			}
			return run(cmd.Context(), opts, args[0], stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file (env still overrides it)")
	f.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides REST_BASE_URL)")
	f.StringVarP(&opts.username, "user", "u", "", "Basic auth username")
	f.StringVarP(&opts.password, "password", "p", "", "Basic auth password")
	f.StringVar(&opts.userAgent, "user-agent", "", "User-Agent header (default RestManager/<version>)")
	f.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	f.StringArrayVar(&opts.params, "param", nil, "parameter name=value (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "raw request body, @file reads a file")
	f.StringVar(&opts.contentType, "content-type", "", "Content-Type of --data (sniffed when empty)")
	f.BoolVar(&opts.raw, "raw", false, "do not decode JSON replies")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "print lifecycle events to stderr")

	return root
}

func run(ctx context.Context, opts cliOptions, resource string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := logging.FromConfig(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	mopts := []manager.Option{
		manager.WithConfig(cfg),
		manager.WithLogger(logger),
		manager.WithMetrics(metrics),
	}
	if opts.verbose {
		mopts = append(mopts, manager.WithHandler(func(ev manager.Event) {
			printEvent(stderr, ev)
		}))
	}
	mgr := manager.New(mopts...)

	call, err := send(ctx, mgr, opts, resource)
	if err != nil {
		return err
	}

	result, err := call.Wait(ctx)
	if err != nil {
		return err
	}

	if opts.verbose {
		snap := metrics.Snapshot()
		fmt.Fprintf(stderr, "* %d request(s), %.3fs average\n", snap.TotalRequests, snap.AverageDuration())
	}
	return report(stdout, stderr, result)
}

func loadConfig(opts cliOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.baseURL != "" {
		cfg.REST.BaseURL = opts.baseURL
	}
	if opts.username != "" {
		cfg.REST.Username = opts.username
	}
	if opts.password != "" {
		cfg.REST.Password = opts.password
	}
	if opts.userAgent != "" {
		cfg.REST.UserAgent = opts.userAgent
	}
	if opts.raw {
		cfg.REST.ResponseMode = response.ModeRaw.String()
	}
	if opts.timeout > 0 {
		cfg.Client.Timeout = config.Duration(opts.timeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func send(ctx context.Context, mgr *manager.Manager, opts cliOptions, resource string) (*manager.Call, error) {
	if opts.data != "" {
		body, err := readData(opts.data)
		if err != nil {
			return nil, err
		}
		return mgr.RequestBytes(ctx, resource, opts.method, body, opts.contentType)
	}

	set, err := parseParams(opts.params)
	if err != nil {
		return nil, err
	}
	return mgr.Request(ctx, resource, opts.method, set)
}

func readData(data string) ([]byte, error) {
	if path, ok := strings.CutPrefix(data, "@"); ok {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read --data file: %w", err)
		}
		return body, nil
	}
	return []byte(data), nil
}

func parseParams(raw []string) (params.Set, error) {
	pairs := make([]params.Pair, 0, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return params.Set{}, fmt.Errorf("invalid --param %q: want name=value", kv)
		}
		pairs = append(pairs, params.Pair{Name: name, Value: value})
	}
	return params.NewSet(pairs...), nil
}

func report(stdout, stderr io.Writer, result *response.Result) error {
	switch result.Kind {
	case response.KindNetworkError:
		return fmt.Errorf("%w: %w", errNetwork, result.Err)
	case response.KindParsingError:
		fmt.Fprintf(stderr, "HTTP %d\n", result.StatusCode)
		return fmt.Errorf("%w: %w", errParsing, result.Err)
	}

	fmt.Fprintf(stderr, "HTTP %d\n", result.StatusCode)
	if msg := result.APIError(); msg != "" {
		fmt.Fprintf(stderr, "api error: %s\n", msg)
	}
	_, err := stdout.Write(result.Raw)
	if err == nil && len(result.Raw) > 0 && result.Raw[len(result.Raw)-1] != '\n' {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

func printEvent(w io.Writer, ev manager.Event) {
	switch ev.Type {
	case manager.EventUploadProgress, manager.EventDownloadProgress:
		fmt.Fprintf(w, "* %s %d/%d\n", ev.Type, ev.Done, ev.Total)
	case manager.EventAuthChallenge:
		fmt.Fprintf(w, "* %s realm=%q\n", ev.Type, ev.Realm)
	default:
		fmt.Fprintf(w, "* %s %s\n", ev.Type, ev.CallID)
	}
}
