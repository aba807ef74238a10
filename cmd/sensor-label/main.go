package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/sensor-label/internal/extraction"
	"github.com/zombor/sensor-label/internal/label"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// errInvalidSerial signals a failed validation so main can exit non-zero quietly
var errInvalidSerial = errors.New("serial number is invalid")

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errInvalidSerial):
		stop()
		os.Exit(1)
	default:
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected subcommand
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	rootFlags := ff.NewFlagSet("sensor-label")
	logLevel := rootFlags.StringLong("log-level", "info", "Log level: debug, info, warn or error")

	extractFlags := ff.NewFlagSet("extract").SetParent(rootFlags)
	concurrency := extractFlags.IntLong("concurrency", 4, "Maximum files extracted at once")
	extractCmd := &ff.Command{
		Name:      "extract",
		Usage:     "sensor-label extract [FLAGS] [FILE...]",
		ShortHelp: "extract label fields from OCR text files or stdin",
		Flags:     extractFlags,
		Exec: func(ctx context.Context, args []string) error {
			service := label.NewServiceWithConcurrency(extraction.NewExtractor(extraction.DefaultOptions()), *concurrency)
			return runExtract(ctx, service, args, stdin, stdout)
		},
	}

	validateFlags := ff.NewFlagSet("validate").SetParent(rootFlags)
	serial := validateFlags.StringLong("serial", "", "Serial number to validate")
	manufacturer := validateFlags.StringLong("manufacturer", "", "Manufacturer name (Dexcom, Freestyle, Abbott)")
	validateCmd := &ff.Command{
		Name:      "validate",
		Usage:     "sensor-label validate --serial S [--manufacturer M]",
		ShortHelp: "check a serial number against a manufacturer's format",
		Flags:     validateFlags,
		Exec: func(ctx context.Context, args []string) error {
			service := label.NewService(extraction.NewExtractor(extraction.DefaultOptions()))
			if !service.Validate(*serial, *manufacturer) {
				fmt.Fprintln(stdout, "invalid")
				return errInvalidSerial
			}
			fmt.Fprintln(stdout, "valid")
			return nil
		},
	}

	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	var (
		port     = serveFlags.IntLong("port", 8080, "HTTP server port")
		authUser = serveFlags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass = serveFlags.StringLong("auth-pass", "", "Basic auth password (optional)")
		maxBody  = serveFlags.IntLong("max-body", int(label.DefaultMaxBodySize), "Maximum request body size in bytes")
	)
	serveCmd := &ff.Command{
		Name:      "serve",
		Usage:     "sensor-label serve [FLAGS]",
		ShortHelp: "run the extraction HTTP API",
		Flags:     serveFlags,
		Exec: func(ctx context.Context, args []string) error {
			service := label.NewService(extraction.NewExtractor(extraction.DefaultOptions()))
			server := label.NewServer(service, label.BasicAuth{
				Username: *authUser,
				Password: *authPass,
			})
			server.SetMaxBodySize(int64(*maxBody))
			return runServe(ctx, server, fmt.Sprintf(":%d", *port), *authUser != "" || *authPass != "")
		},
	}

	root := &ff.Command{
		Name:        "sensor-label",
		Usage:       "sensor-label [FLAGS] <SUBCOMMAND> ...",
		ShortHelp:   "extract serial, lot and dates from sensor label OCR text",
		Flags:       rootFlags,
		Subcommands: []*ff.Command{extractCmd, validateCmd, serveCmd},
		Exec: func(ctx context.Context, args []string) error {
			return ff.ErrHelp
		},
	}

	if err := root.Parse(args, ff.WithEnvVarPrefix("SENSOR_LABEL")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}

	if err := setupLogging(stderr, *logLevel); err != nil {
		return err
	}

	if err := root.Run(ctx); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(stderr, "%s\n", ffhelp.Command(root.GetSelected()))
			return nil
		}
		return err
	}
	return nil
}

// setupLogging installs a text handler on w at the named level
func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// runExtract extracts each file, or stdin when no files are given, and
// writes one JSON result per line in input order
func runExtract(ctx context.Context, service *label.Service, files []string, stdin io.Reader, stdout io.Writer) error {
	var docs []label.Document
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		docs = append(docs, label.Document{ID: "-", Text: string(data)})
	}
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		docs = append(docs, label.Document{ID: name, Text: string(data)})
	}

	results, err := service.ExtractBatch(ctx, docs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}
	return nil
}

// runServe starts the server and blocks until ctx is cancelled
func runServe(ctx context.Context, server *label.Server, addr string, authEnabled bool) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if authEnabled {
		slog.Info("Basic auth enabled")
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		slog.Info("Shutting down...")
		return nil
	}
}
