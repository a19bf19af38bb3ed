package inflect

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	keepSingularPattern = regexp.MustCompile(`us$`)
	stripESPattern      = regexp.MustCompile(`(?:[sxz]|[^aeioudgkprt]h)es$`)
	stripIESPattern     = regexp.MustCompile(`[^aeiou]ies$`)
	appendESPattern     = regexp.MustCompile(`(?:[sxz]|[^aeioudgkprt]h)$`)
	consonantYPattern   = regexp.MustCompile(`[^aeiou]y$`)
)

// Engine applies the inflection rules. Its tables are fixed at construction
// and it is safe for concurrent use.
type Engine struct {
	uncountable   map[string]struct{}
	irregular     map[string]string // singular -> plural
	reverse       map[string]string // plural -> singular
	cache         Cache
	observer      Observer
	logger        *slog.Logger
	preserveYStem bool
}

// New builds an Engine from the built-in tables plus any extras in opts.
func New(opts ...Option) *Engine {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = NewMemoryCache()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		uncountable:   make(map[string]struct{}, len(uncountableWords)+len(o.uncountable)),
		irregular:     make(map[string]string, len(irregularWords)+len(o.irregular)),
		reverse:       make(map[string]string, len(irregularWords)+len(o.irregular)),
		cache:         o.cache,
		observer:      o.observer,
		logger:        o.logger,
		preserveYStem: o.preserveYStem,
	}

	for _, w := range uncountableWords {
		e.uncountable[w] = struct{}{}
	}
	for _, w := range o.uncountable {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		e.uncountable[w] = struct{}{}
	}

	for singular, plural := range irregularWords {
		e.irregular[singular] = plural
	}
	for _, singular := range sortedKeys(o.irregular) {
		plural := o.irregular[singular]
		if prev, ok := e.irregular[singular]; ok && prev != plural {
			e.logger.Debug("irregular override replaces built-in plural",
				slog.String("singular", singular),
				slog.String("builtin", prev),
				slog.String("plural", plural),
			)
		}
		e.irregular[singular] = plural
	}

	// Reverse index, built-ins first so a configured pair wins a collision.
	for singular, plural := range irregularWords {
		if e.irregular[singular] == plural {
			e.reverse[plural] = singular
		}
	}
	for _, singular := range sortedKeys(o.irregular) {
		plural := o.irregular[singular]
		if prev, ok := e.reverse[plural]; ok && prev != singular {
			e.logger.Debug("irregular plural shared by several singulars",
				slog.String("plural", plural),
				slog.String("kept", singular),
				slog.String("dropped", prev),
			)
		}
		e.reverse[plural] = singular
	}

	if len(o.uncountable) > 0 || len(o.irregular) > 0 {
		e.logger.Debug("inflection tables extended",
			slog.Int("uncountable", len(e.uncountable)),
			slog.Int("irregular", len(e.irregular)),
		)
	}

	return e
}

// Uncountable reports whether word has identical singular and plural forms.
// The comparison is case-insensitive.
func (e *Engine) Uncountable(word string) bool {
	_, ok := e.uncountable[strings.ToLower(word)]
	return ok
}

// Singular returns the singular form of word.
func (e *Engine) Singular(word string) string {
	return e.SingularN(word, 1)
}

// SingularN returns the singular form of word when count is exactly 1 and
// word unchanged otherwise.
func (e *Engine) SingularN(word string, count float64) string {
	if count != 1 {
		return word
	}

	word = strings.TrimSpace(word)
	key := CacheKey{Operation: OpSingular, Word: word, Count: formatCount(count)}
	if v, ok := e.lookup(key); ok {
		return v
	}

	result := e.singularize(word)
	e.cache.Set(key, result)
	return result
}

func (e *Engine) singularize(word string) string {
	if e.Uncountable(word) {
		return word
	}
	if singular, ok := e.reverse[word]; ok {
		return singular
	}

	switch {
	case keepSingularPattern.MatchString(word):
		return word
	case stripESPattern.MatchString(word):
		return word[:len(word)-2]
	case stripIESPattern.MatchString(word):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

// Plural returns the plural form of word.
func (e *Engine) Plural(word string) string {
	return e.PluralN(word, 0)
}

// PluralN returns the plural form of word unless count is exactly 1, in which
// case word is returned unchanged. An all-uppercase word yields an
// all-uppercase plural.
func (e *Engine) PluralN(word string, count float64) string {
	if count == 1 {
		return word
	}

	word = strings.TrimSpace(word)
	key := CacheKey{Operation: OpPlural, Word: word, Count: formatCount(count)}
	if v, ok := e.lookup(key); ok {
		return v
	}

	result := e.pluralize(word)
	e.cache.Set(key, result)
	return result
}

func (e *Engine) pluralize(word string) string {
	if word == "" || e.Uncountable(word) {
		return word
	}
	upper := strings.ToUpper(word) == word

	var result string
	if plural, ok := e.irregular[word]; ok {
		result = plural
	} else {
		switch {
		case appendESPattern.MatchString(word):
			result = word + "es"
		case consonantYPattern.MatchString(word):
			stem := word[:len(word)-1]
			if e.preserveYStem {
				result = stem + "ies"
			} else {
				r, _ := utf8.DecodeLastRuneInString(stem)
				result = string(r) + "ies"
			}
		default:
			result = word + "s"
		}
	}

	if upper {
		result = strings.ToUpper(result)
	}
	return result
}

// CacheLen reports how many results are memoized.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

func (e *Engine) lookup(key CacheKey) (string, bool) {
	v, ok := e.cache.Get(key)
	if e.observer != nil {
		if ok {
			e.observer.CacheHit(key.Operation)
		} else {
			e.observer.CacheMiss(key.Operation)
		}
	}
	return v, ok
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
