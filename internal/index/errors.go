package index

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaMismatchError is returned by New when a record's parameter names
// differ from the parameter space established by the first record.
// Construction fails as a whole; the caller must fix the expression or
// the input data.
type SchemaMismatchError struct {
	Path string   // path of the offending record
	Want []string // parameter space of the index
	Got  []string // parameter names carried by the record
}

// Error implements the error interface for SchemaMismatchError.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch for %s: index has parameters [%s], record has [%s]",
		e.Path, strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}

// UnknownParameterError is returned when a selection references a parameter
// name outside the index's parameter space. This is a caller bug.
type UnknownParameterError struct {
	Name  string   // the unknown parameter name
	Known []string // the valid parameter names
}

// Error implements the error interface for UnknownParameterError.
func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// IncompleteSelectionError is returned by Resolve when the selection does
// not assign a value to every parameter in the space.
type IncompleteSelectionError struct {
	Missing []string // parameter names without a value, sorted
}

// Error implements the error interface for IncompleteSelectionError.
func (e *IncompleteSelectionError) Error() string {
	return fmt.Sprintf("incomplete selection: missing %s", strings.Join(e.Missing, ", "))
}

// NoMatchError is returned by Resolve when no record satisfies the
// selection. This is an expected, recoverable condition: the caller
// adjusts the selection and retries.
type NoMatchError struct {
	Selection Selection
}

// Error implements the error interface for NoMatchError.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no file matches selection %s", formatSelection(e.Selection))
}

// AmbiguousMatchError is returned by Resolve when more than one record
// satisfies a complete selection. It signals a non-injective expression or
// duplicate files and is never silently resolved.
type AmbiguousMatchError struct {
	Selection Selection
	Paths     []string // the conflicting record paths, in record order
}

// Error implements the error interface for AmbiguousMatchError.
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("selection %s matches %d files: %s",
		formatSelection(e.Selection), len(e.Paths), strings.Join(e.Paths, ", "))
}

// formatSelection renders a selection as {k=v, ...} with sorted keys for
// deterministic error messages.
func formatSelection(sel Selection) string {
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", k, sel[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
