// Command inflector inflects words from the command line or serves the
// inflection engine over HTTP.
//
//	inflector [flags] <operation> [words...]
//	inflector [flags] serve
//
// With no words and a non-interactive stdin, words are read one per line.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inflector/internal/config"
	"inflector/internal/logging"
	"inflector/internal/observability"
	"inflector/internal/server"
	"inflector/pkg/inflect"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"golang.org/x/term"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

const serveCommand = "serve"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		slog.Error("inflector error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type cliFlags struct {
	count       *string
	separator   *string
	showVersion *bool
}

func defineCLIFlags(fs *pflag.FlagSet) cliFlags {
	return cliFlags{
		count:       fs.String("count", "", "Count for singular/plural (default: 1 for singular, 0 for plural)"),
		separator:   fs.String("separator", " ", "Separator inserted by decamelize"),
		showVersion: fs.Bool("version", false, "Print version and exit"),
	}
}

func usage(fs *pflag.FlagSet, w io.Writer) func() {
	return func() {
		names := make([]string, 0, len(inflect.Operations()))
		for _, op := range inflect.Operations() {
			names = append(names, string(op))
		}
		fmt.Fprintf(w, "Usage:\n  inflector [flags] <operation> [words...]\n  inflector [flags] %s\n\n", serveCommand)
		fmt.Fprintf(w, "Operations: %s\n\nFlags:\n", strings.Join(names, ", "))
		fmt.Fprint(w, fs.FlagUsages())
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("inflector", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)
	flags := defineCLIFlags(fs)

	cfg, err := config.LoadFlags(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if *flags.showVersion {
		fmt.Fprintf(stdout, "inflector %s (%s)\n", Version, Commit)
		return nil
	}

	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = Version
	}

	validationResult := cfg.Validate()
	for _, warn := range validationResult.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validationResult.HasErrors() {
		for _, err := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.String("hint", err.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed: %s", validationResult.Error())
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("missing operation")
	}

	if rest[0] == serveCommand {
		return serve(cfg)
	}

	op, err := inflect.ParseOperation(rest[0])
	if err != nil {
		fs.Usage()
		return err
	}

	req := inflect.Request{Operation: op}
	if fs.Changed("count") {
		count := inflect.ParseCount(op, *flags.count)
		req.Count = &count
	}
	if fs.Changed("separator") {
		req.Separator = flags.separator
	}

	return inflectWords(cfg, req, rest[1:], stdin, stdout)
}

func inflectWords(cfg *config.Config, req inflect.Request, words []string, stdin io.Reader, stdout io.Writer) error {
	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})

	// The global provider is a no-op unless something installed an SDK.
	metrics, err := observability.NewInflectionMetrics(otel.GetMeterProvider())
	if err != nil {
		return err
	}
	engine := server.NewEngine(cfg, logger, metrics)

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	emit := func(word string) error {
		req.Word = word
		result, err := engine.Apply(req)
		if err != nil {
			return err
		}
		metrics.RecordOperation(context.Background(), req.Operation, observability.SourceCLI)
		_, err = fmt.Fprintln(out, result)
		return err
	}

	if len(words) > 0 {
		for _, word := range words {
			if err := emit(word); err != nil {
				return err
			}
		}
		return nil
	}

	if isTerminal(stdin) {
		return fmt.Errorf("no words given; pass words as arguments or pipe them on stdin")
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := emit(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func serve(cfg *config.Config) error {
	logger, loggerProvider, err := server.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	app, err := server.New(cfg, logger)
	if err != nil {
		if loggerProvider != nil {
			_ = loggerProvider.Shutdown(context.Background(), logger.Logger)
		}
		return err
	}
	app.AttachLoggerProvider(loggerProvider)

	if err := app.Init(context.Background()); err != nil {
		return err
	}

	serverErrors, err := app.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	_, waitErr := app.WaitForStop(stop, serverErrors)

	logger.Info("shutting down server gracefully")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	shutdownErr := app.Shutdown(shutdownCtx)
	shutdownCancel()

	if waitErr != nil {
		return waitErr
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	logger.Info("server stopped gracefully")
	return nil
}
