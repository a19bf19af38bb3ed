package inflect

// uncountableWords have the same singular and plural form.
var uncountableWords = []string{
	"access", "advice", "aircraft", "art", "baggage", "bison", "dances", "deer",
	"equipment", "fish", "fuel", "furniture", "heat", "honey", "homework",
	"impatience", "information", "knowledge", "luggage", "media", "money",
	"moose", "music", "news", "patience", "progress", "pollution", "research",
	"rice", "salmon", "sand", "series", "sheep", "sms", "spam", "species",
	"staff", "swine", "toothpaste", "traffic", "understanding", "water",
	"weather", "work",
}

// irregularWords maps singular -> plural for words the suffix rules get wrong.
var irregularWords = map[string]string{
	"child":    "children",
	"clothes":  "clothing",
	"man":      "men",
	"movie":    "movies",
	"person":   "people",
	"woman":    "women",
	"mouse":    "mice",
	"goose":    "geese",
	"ox":       "oxen",
	"leaf":     "leaves",
	"course":   "courses",
	"size":     "sizes",
	"was":      "were",
	"is":       "are",
	"verse":    "verses",
	"hero":     "heroes",
	"purchase": "purchases",
	"expense":  "expenses",
}

// UncountableWords returns a copy of the built-in uncountable list.
func UncountableWords() []string {
	out := make([]string, len(uncountableWords))
	copy(out, uncountableWords)
	return out
}

// IrregularWords returns a copy of the built-in singular -> plural table.
func IrregularWords() map[string]string {
	out := make(map[string]string, len(irregularWords))
	for k, v := range irregularWords {
		out[k] = v
	}
	return out
}
