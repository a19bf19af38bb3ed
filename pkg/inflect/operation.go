package inflect

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknownOperation is returned by ParseOperation and Engine.Apply for names
// that don't identify an operation.
var ErrUnknownOperation = errors.New("inflect: unknown operation")

// Operation names one of the engine's transformations.
type Operation string

const (
	OpSingular    Operation = "singular"
	OpPlural      Operation = "plural"
	OpUncountable Operation = "uncountable"
	OpCamelize    Operation = "camelize"
	OpDecamelize  Operation = "decamelize"
	OpUnderscore  Operation = "underscore"
	OpHumanize    Operation = "humanize"
)

// Operations lists every supported operation in display order.
func Operations() []Operation {
	return []Operation{OpSingular, OpPlural, OpUncountable, OpCamelize, OpDecamelize, OpUnderscore, OpHumanize}
}

// ParseOperation resolves a case-insensitive operation name.
func ParseOperation(name string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Operations() {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// DefaultCount is the count an operation uses when the caller gives none:
// 1 for singular, 0 for everything else.
func (op Operation) DefaultCount() float64 {
	if op == OpSingular {
		return 1
	}
	return 0
}

// ParseCount converts a user supplied count. An empty value yields the
// operation default. Anything that is not a number becomes NaN, which never
// equals 1, so it behaves like "some count other than one" instead of failing.
func ParseCount(op Operation, raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return op.DefaultCount()
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// formatCount renders a count for cache keys. NaN renders as "NaN" so repeated
// lookups with a non-numeric count still hit.
func formatCount(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Request describes one operation for Engine.Apply.
type Request struct {
	Operation Operation
	Word      string
	// Count is used by singular and plural. Nil means the operation default.
	Count *float64
	// Separator is used by decamelize. Nil means a single space.
	Separator *string
}

// Apply runs the requested operation. Uncountable reports "true" or "false".
func (e *Engine) Apply(req Request) (string, error) {
	count := req.Operation.DefaultCount()
	if req.Count != nil {
		count = *req.Count
	}

	switch req.Operation {
	case OpSingular:
		return e.SingularN(req.Word, count), nil
	case OpPlural:
		return e.PluralN(req.Word, count), nil
	case OpUncountable:
		return strconv.FormatBool(e.Uncountable(req.Word)), nil
	case OpCamelize:
		return Camelize(req.Word), nil
	case OpDecamelize:
		if req.Separator != nil {
			return DecamelizeWith(req.Word, *req.Separator), nil
		}
		return Decamelize(req.Word), nil
	case OpUnderscore:
		return Underscore(req.Word), nil
	case OpHumanize:
		return Humanize(req.Word), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
}
