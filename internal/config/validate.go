package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Inflection.validate(result)
	c.Server.validate(result)
	c.Observability.validate(result)

	return result
}

func (i *InflectionConfig) validate(result *ValidationResult) {
	for idx, word := range i.ExtraUncountable {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("inflection.extra_uncountable[%d]", idx),
				Message: "word cannot be empty",
			})
			continue
		}
		if trimmed != strings.ToLower(trimmed) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Field:   fmt.Sprintf("inflection.extra_uncountable[%d]", idx),
				Message: fmt.Sprintf("word %q is not lowercase", trimmed),
				Hint:    "uncountable lookups are case-insensitive; the word is stored lowercased",
			})
		}
	}

	for singular, plural := range i.ExtraIrregular {
		field := fmt.Sprintf("inflection.extra_irregular.%s", singular)
		if !singleToken(singular) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("singular %q must be a single non-empty word", singular),
			})
			continue
		}
		if !singleToken(plural) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("plural %q for %q must be a single non-empty word", plural, singular),
				Hint:    "use singular=plural pairs such as cactus=cacti",
			})
		}
	}

	if !i.CacheEnabled {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "inflection.cache_enabled",
			Message: "result cache is disabled",
			Hint:    "every call recomputes its inflection",
		})
	}
}

func singleToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (s *ServerConfig) validate(result *ValidationResult) {
	// Port range validation
	if s.Port < 1 || s.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port),
		})
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(s.ReadTimeout)},
		{"server.write_timeout", int64(s.WriteTimeout)},
		{"server.idle_timeout", int64(s.IdleTimeout)},
		{"server.shutdown_timeout", int64(s.ShutdownTimeout)},
	}
	for _, t := range timeouts {
		if t.value < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   t.field,
				Message: "timeout cannot be negative",
			})
		}
	}
	if s.ShutdownTimeout == 0 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "server.shutdown_timeout",
			Message: "shutdown_timeout is zero",
			Hint:    "in-flight requests are cut off immediately on shutdown",
		})
	}

	if s.MaxBatchSize < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.max_batch_size",
			Message: "max_batch_size must be greater than 0",
		})
	}
	if s.MaxBodyBytes < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "server.max_body_bytes",
			Message: "max_body_bytes must be greater than 0",
		})
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	// Log level validation
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.level",
			Message: fmt.Sprintf("invalid log level %q", o.Logging.Level),
			Hint:    "valid values are: debug, info, warn, error",
		})
	}

	// Log format validation
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.format",
			Message: fmt.Sprintf("invalid log format %q", o.Logging.Format),
			Hint:    "valid values are: json, text",
		})
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("trace_sample_ratio %v is out of range", o.TraceSampleRatio),
			Hint:    "use a value between 0.0 and 1.0",
		})
	}

	if strings.TrimSpace(o.ServiceName) == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "observability.service_name",
			Message: "service_name is empty",
			Hint:    "exported telemetry will carry an unnamed service",
		})
	}

	// OTLP protocol validation
	o.OTLP.validate("observability.otlp", result)

	// Signal-specific OTLP validation
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".protocol",
			Message: fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			Hint:    "valid values are: grpc, http/protobuf",
		})
	}

	if o.Protocol == "http/protobuf" {
		if !validOTLPEndpoint(o.Endpoint) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   prefix + ".endpoint",
				Message: fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
				Hint:    "use host:port or a full URL",
			})
		}
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".compression",
			Message: fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			Hint:    "valid values are: none, gzip",
		})
	}

	if o.RetryMaxAttempts < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".retry_max_attempts",
			Message: "retry_max_attempts cannot be negative",
		})
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}
