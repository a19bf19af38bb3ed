package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// EnvPrefix prefixes every environment variable, e.g. INFLECTOR_SERVER_PORT.
const EnvPrefix = "INFLECTOR"

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Load parses args with a fresh flag set and resolves configuration. The
// remaining positional arguments are returned alongside the config.
func Load(args []string) (*Config, []string, error) {
	fs := pflag.NewFlagSet("inflector", pflag.ContinueOnError)
	cfg, err := LoadFlags(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

// LoadFlags parses args into fs and resolves configuration with the following
// precedence:
// 1. Command line flags
// 2. Environment variables
// 3. Config file
// 4. Default values
//
// Callers may define their own flags on fs before calling LoadFlags. Only
// flags with a dotted name ("server.port") are treated as configuration keys.
func LoadFlags(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()

	// Defaults (lowest priority)
	setDefaults(v)

	// --- Flags ---
	defineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// --- Config file ---
	cfgPath, _ := fs.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("inflector")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/inflector/")
		v.AddConfigPath("$HOME/.inflector")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case
	// Env vars: INFLECTOR_INFLECTION_PRESERVE_Y_STEM
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Flags binding (highest priority) ---
	bindChangedFlagsToViper(fs, v)

	// --- Unmarshal (strict) ---
	var cfg Config
	if err := v.UnmarshalExact(
		&cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToStringSliceHookFunc(","),
				stringToStringMapHookFunc(",", "="),
			),
		),
	); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- Irregular pairs from file (merged under explicit entries) ---
	if path := strings.TrimSpace(cfg.Inflection.ExtraIrregularFile); path != "" {
		pairs, err := readIrregularFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read irregular file: %w", err)
		}
		if cfg.Inflection.ExtraIrregular == nil {
			cfg.Inflection.ExtraIrregular = make(map[string]string, len(pairs))
		}
		for singular, plural := range pairs {
			if _, ok := cfg.Inflection.ExtraIrregular[singular]; !ok {
				cfg.Inflection.ExtraIrregular[singular] = plural
			}
		}
	}

	return &cfg, nil
}

// bindChangedFlagsToViper copies only explicitly-set config flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(fs *pflag.FlagSet, v *viper.Viper) {
	fs.Visit(func(f *pflag.Flag) {
		if !strings.Contains(f.Name, ".") {
			return
		}

		switch f.Value.Type() {
		case "string":
			val, _ := fs.GetString(f.Name)
			v.Set(f.Name, val)
		case "int":
			val, _ := fs.GetInt(f.Name)
			v.Set(f.Name, val)
		case "int64":
			val, _ := fs.GetInt64(f.Name)
			v.Set(f.Name, val)
		case "bool":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		case "float64":
			val, _ := fs.GetFloat64(f.Name)
			v.Set(f.Name, val)
		case "duration":
			val, _ := fs.GetDuration(f.Name)
			v.Set(f.Name, val)
		case "stringSlice":
			val, _ := fs.GetStringSlice(f.Name)
			v.Set(f.Name, val)
		case "stringToString":
			val, _ := fs.GetStringToString(f.Name)
			v.Set(f.Name, val)
		default:
			v.Set(f.Name, f.Value.String())
		}
	})
}

// defineFlags defines all configuration flags using canonical snake_case keys.
func defineFlags(fs *pflag.FlagSet) {
	if fs.Lookup("config") == nil {
		fs.String("config", "", "Path to config file")
	}

	// Inflection flags
	fs.StringSlice("inflection.extra_uncountable", nil, "Additional uncountable words (comma-separated or repeated)")
	fs.StringToString("inflection.extra_irregular", nil, "Additional irregular pairs as singular=plural (comma-separated)")
	fs.String("inflection.extra_irregular_file", "", "Path to file of singular=plural lines (use @- for stdin)")
	fs.Bool("inflection.preserve_y_stem", false, "Pluralize consonant+y words to stem+ies (city -> cities)")
	fs.Bool("inflection.cache_enabled", true, "Memoize inflection results")

	// Server flags
	fs.Int("server.port", 0, "HTTP server port")
	fs.Duration("server.read_timeout", 0, "HTTP server read timeout")
	fs.Duration("server.write_timeout", 0, "HTTP server write timeout")
	fs.Duration("server.idle_timeout", 0, "HTTP server idle timeout")
	fs.Duration("server.shutdown_timeout", 0, "HTTP server graceful shutdown timeout")
	fs.Int("server.max_batch_size", 0, "Maximum items accepted by /v1/batch")
	fs.Int64("server.max_body_bytes", 0, "Maximum request body size in bytes")

	// Observability flags
	fs.String("observability.service_name", "", "Service name for observability")
	fs.String("observability.service_version", "", "Service version for observability")
	fs.String("observability.environment", "", "Environment name (dev, staging, prod)")
	fs.Bool("observability.metrics_enabled", false, "Enable metrics collection")
	fs.Bool("observability.tracing_enabled", false, "Enable distributed tracing")
	fs.Float64("observability.trace_sample_ratio", 0, "Trace sampling ratio from 0.0 to 1.0")

	// Logging flags (under observability)
	fs.String("observability.logging.level", "", "Log level (debug, info, warn, error)")
	fs.String("observability.logging.format", "", "Log format (json, text)")
	fs.Bool("observability.logging.exports_enabled", false, "Enable OTLP log export")

	// Global OTLP flags
	fs.String("observability.otlp.endpoint", "", "OTLP endpoint for all signals (e.g., localhost:4317)")
	fs.String("observability.otlp.protocol", "", "OTLP protocol for all signals (grpc, http/protobuf)")
	fs.Bool("observability.otlp.insecure", false, "Use insecure connection (no TLS)")
	fs.String("observability.otlp.tls_cert_file", "", "Path to TLS certificate file for server verification")
	fs.String("observability.otlp.tls_client_cert_file", "", "Path to client certificate file for mTLS")
	fs.String("observability.otlp.tls_client_key_file", "", "Path to client key file for mTLS")
	fs.Duration("observability.otlp.timeout", 0, "OTLP export timeout")
	fs.String("observability.otlp.compression", "", "OTLP compression (none, gzip)")
	fs.Bool("observability.otlp.retry_enabled", false, "Enable retry on transient errors")
	fs.Int("observability.otlp.retry_max_attempts", 0, "Maximum retry attempts")

	// Signal-specific OTLP flags
	fs.String("observability.traces.endpoint", "", "OTLP endpoint for traces only")
	fs.String("observability.traces.protocol", "", "OTLP protocol for traces (grpc, http/protobuf)")
	fs.String("observability.logs.endpoint", "", "OTLP endpoint for logs only")
	fs.String("observability.logs.protocol", "", "OTLP protocol for logs (grpc, http/protobuf)")
}

func setDefaults(v *viper.Viper) {
	// Inflection defaults
	v.SetDefault("inflection.extra_uncountable", []string{})
	v.SetDefault("inflection.extra_irregular", map[string]string{})
	v.SetDefault("inflection.extra_irregular_file", "")
	v.SetDefault("inflection.preserve_y_stem", false)
	v.SetDefault("inflection.cache_enabled", true)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_batch_size", 1000)
	v.SetDefault("server.max_body_bytes", int64(1<<20))

	// Observability defaults
	v.SetDefault("observability.service_name", "inflector")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.metrics_enabled", false)
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.trace_sample_ratio", 1.0)

	// Logging defaults
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
	v.SetDefault("observability.logging.exports_enabled", false)

	// OTLP defaults
	v.SetDefault("observability.otlp.endpoint", "localhost:4317")
	v.SetDefault("observability.otlp.protocol", "grpc")
	v.SetDefault("observability.otlp.insecure", false)
	v.SetDefault("observability.otlp.tls_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_cert_file", "")
	v.SetDefault("observability.otlp.tls_client_key_file", "")
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.otlp.compression", "gzip")
	v.SetDefault("observability.otlp.retry_enabled", true)
	v.SetDefault("observability.otlp.retry_max_attempts", 5)
}

// readIrregularFile parses "singular=plural" lines. Blank lines and lines
// starting with '#' are skipped. Keys are lowercased to match how viper
// normalizes map keys from config files.
func readIrregularFile(path string) (map[string]string, error) {
	var r io.Reader
	if path == "@-" {
		if stdinIsTerminal() {
			return nil, fmt.Errorf("refusing to read irregular pairs from an interactive terminal; pipe a file or use a path")
		}
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseIrregularPairs(r)
}

func parseIrregularPairs(r io.Reader) (map[string]string, error) {
	pairs := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		singular, plural, ok := strings.Cut(line, "=")
		singular = strings.ToLower(strings.TrimSpace(singular))
		plural = strings.TrimSpace(plural)
		if !ok || singular == "" || plural == "" {
			return nil, fmt.Errorf("line %d: expected singular=plural, got %q", lineNo, line)
		}
		pairs[singular] = plural
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func stringToStringSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return []string{}, nil
		}

		parts := strings.Split(raw, sep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

// stringToStringMapHookFunc lets env vars carry maps:
// INFLECTOR_INFLECTION_EXTRA_IRREGULAR="cactus=cacti,focus=foci".
func stringToStringMapHookFunc(sep, kvSep string) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(map[string]string{}) {
			return data, nil
		}

		out := map[string]string{}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return out, nil
		}

		for _, part := range strings.Split(raw, sep) {
			k, v, ok := strings.Cut(part, kvSep)
			if !ok {
				return nil, fmt.Errorf("invalid map entry %q, expected key%svalue", part, kvSep)
			}
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		return out, nil
	}
}
