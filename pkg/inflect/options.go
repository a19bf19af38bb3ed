package inflect

import "log/slog"

// Observer is notified about cache activity. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheHit(op Operation)
	CacheMiss(op Operation)
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	cache         Cache
	observer      Observer
	logger        *slog.Logger
	uncountable   []string
	irregular     map[string]string
	preserveYStem bool
}

// WithCache replaces the default in-memory cache. Passing nil disables
// memoization entirely.
func WithCache(c Cache) Option {
	return func(o *options) {
		if c == nil {
			o.cache = nopCache{}
			return
		}
		o.cache = c
	}
}

// WithObserver registers an observer for cache hits and misses.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger used for table construction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUncountable adds words to the uncountable set. Words are lowercased.
func WithUncountable(words ...string) Option {
	return func(o *options) {
		o.uncountable = append(o.uncountable, words...)
	}
}

// WithIrregular adds singular -> plural pairs. An entry whose singular is
// already built in replaces the built-in plural.
func WithIrregular(pairs map[string]string) Option {
	return func(o *options) {
		if o.irregular == nil {
			o.irregular = make(map[string]string, len(pairs))
		}
		for k, v := range pairs {
			o.irregular[k] = v
		}
	}
}

// WithStemPreservingY makes "city" pluralize to "cities" instead of "ties".
func WithStemPreservingY() Option {
	return func(o *options) {
		o.preserveYStem = true
	}
}
