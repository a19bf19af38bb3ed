// Package inflect derives singular and plural forms of English nouns and
// converts identifiers between common casings.
//
// Pluralization is driven by a short list of suffix rules plus two exception
// tables: words that never change (uncountable) and words with irregular
// plurals. Results are memoized per engine.
//
// Basic usage:
//
//	inflect.Plural("box")          // "boxes"
//	inflect.Singular("cities")     // "city"
//	inflect.PluralN("cat", 1)      // "cat" (count of one keeps the singular)
//	inflect.Camelize("some_value") // "SomeValue"
//
// # Engines
//
// The package-level functions share a default [Engine]. Build a dedicated one
// to add exceptions or to observe cache behavior:
//
//	e := inflect.New(
//		inflect.WithIrregular(map[string]string{"cactus": "cacti"}),
//		inflect.WithUncountable("firmware"),
//		inflect.WithLogger(logger),
//	)
//	e.Plural("cactus") // "cacti"
//
// # Count semantics
//
// [Engine.SingularN] only singularizes when count is exactly 1 and
// [Engine.PluralN] only pluralizes when count is anything other than 1. Any
// other call returns the input untouched, which lets callers pick a form for a
// count without branching:
//
//	fmt.Sprintf("%d %s", n, inflect.PluralN("file", float64(n)))
//
// # Known quirk
//
// A word ending in a consonant followed by "y" pluralizes to the single
// character before the "y" plus "ies" ("city" becomes "ties"). This matches
// the historical behavior of the rule table. Pass [WithStemPreservingY] to get
// the conventional "cities".
package inflect
