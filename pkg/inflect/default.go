package inflect

var defaultEngine = New()

// Default returns the engine behind the package-level functions.
func Default() *Engine { return defaultEngine }

// Uncountable reports whether word is uncountable using the default engine.
func Uncountable(word string) bool { return defaultEngine.Uncountable(word) }

// Singular singularizes word using the default engine.
func Singular(word string) string { return defaultEngine.Singular(word) }

// SingularN is Engine.SingularN on the default engine.
func SingularN(word string, count float64) string { return defaultEngine.SingularN(word, count) }

// Plural pluralizes word using the default engine.
func Plural(word string) string { return defaultEngine.Plural(word) }

// PluralN is Engine.PluralN on the default engine.
func PluralN(word string, count float64) string { return defaultEngine.PluralN(word, count) }
