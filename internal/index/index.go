// Package index implements the parametric index at the heart of pscan.
//
// An Index is built once from the records of a single scan and is read-only
// afterwards: Options and Resolve perform no mutation and are safe to call
// concurrently without coordination. A rescan builds a brand-new Index; the
// snapshot package handles publishing it atomically.
package index

import (
	"sort"
	"strconv"
)

// Record is one scanned file: its parameter-value assignment plus its path.
// Values are the raw captured strings; equality is exact string equality.
// Records are immutable once handed to New.
type Record struct {
	Values map[string]string
	Path   string
}

// Selection is a partial assignment of values to parameters, built fresh
// per query by the caller.
type Selection map[string]string

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Index owns the records of one scan and, per parameter, an inverted map
// from value to the sorted posting list of record ids holding that value.
type Index struct {
	params   []string // parameter space, sorted
	records  []Record
	inverted map[string]map[string][]int
}

// New builds an Index from the given records. Record ids follow insertion
// order. All records must carry the same set of parameter names; the space
// is established by the first record and any deviation fails construction
// with a SchemaMismatchError. An empty record slice yields a valid, empty
// index with an empty parameter space.
func New(records []Record) (*Index, error) {
	ix := &Index{
		records:  records,
		inverted: make(map[string]map[string][]int),
	}
	if len(records) == 0 {
		return ix, nil
	}

	for name := range records[0].Values {
		ix.params = append(ix.params, name)
	}
	sort.Strings(ix.params)

	for id, rec := range records {
		if len(rec.Values) != len(ix.params) {
			return nil, &SchemaMismatchError{Path: rec.Path, Want: ix.params, Got: paramNames(rec)}
		}
		for _, name := range ix.params {
			value, ok := rec.Values[name]
			if !ok {
				return nil, &SchemaMismatchError{Path: rec.Path, Want: ix.params, Got: paramNames(rec)}
			}
			byValue, ok := ix.inverted[name]
			if !ok {
				byValue = make(map[string][]int)
				ix.inverted[name] = byValue
			}
			// ids arrive in increasing order, so each posting list
			// stays sorted without an explicit sort.
			byValue[value] = append(byValue[value], id)
		}
	}
	return ix, nil
}

// Params returns the parameter space in sorted order. The returned slice
// must not be modified.
func (ix *Index) Params() []string {
	return ix.params
}

// Len returns the number of records in the index.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Record returns the record with the given id. The id must come from this
// index (0 <= id < Len).
func (ix *Index) Record(id int) Record {
	return ix.records[id]
}

// Options returns, for every parameter NOT present in the selection, the
// distinct values that occur among the records consistent with the
// selection, sorted for display. Parameters fixed by the selection are
// omitted. An empty candidate set yields empty slices for every unfixed
// parameter; that is not an error. A selection key outside the parameter
// space fails with an UnknownParameterError.
func (ix *Index) Options(sel Selection) (map[string][]string, error) {
	if err := ix.checkKnown(sel); err != nil {
		return nil, err
	}

	candidates := ix.candidates(sel)

	opts := make(map[string][]string, len(ix.params)-len(sel))
	for _, name := range ix.params {
		if _, fixed := sel[name]; fixed {
			continue
		}
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for _, id := range candidates {
			v := ix.records[id].Values[name]
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sortValues(values)
		opts[name] = values
	}
	return opts, nil
}

// Resolve maps a complete selection to the unique path it identifies.
// It fails with IncompleteSelectionError when the selection does not cover
// the full parameter space, NoMatchError when no record matches, and
// AmbiguousMatchError when more than one does.
func (ix *Index) Resolve(sel Selection) (string, error) {
	if err := ix.checkKnown(sel); err != nil {
		return "", err
	}
	if len(sel) < len(ix.params) {
		var missing []string
		for _, name := range ix.params {
			if _, ok := sel[name]; !ok {
				missing = append(missing, name)
			}
		}
		return "", &IncompleteSelectionError{Missing: missing}
	}

	candidates := ix.candidates(sel)
	switch len(candidates) {
	case 0:
		return "", &NoMatchError{Selection: sel}
	case 1:
		return ix.records[candidates[0]].Path, nil
	default:
		paths := make([]string, len(candidates))
		for i, id := range candidates {
			paths[i] = ix.records[id].Path
		}
		return "", &AmbiguousMatchError{Selection: sel, Paths: paths}
	}
}

// candidates returns the sorted record ids consistent with the selection.
// The intersection starts from the smallest posting list so intermediate
// results stay small; real parameter spaces are sparse, not cartesian.
func (ix *Index) candidates(sel Selection) []int {
	if len(sel) == 0 {
		all := make([]int, len(ix.records))
		for i := range all {
			all[i] = i
		}
		return all
	}

	lists := make([][]int, 0, len(sel))
	for name, value := range sel {
		list := ix.inverted[name][value]
		if len(list) == 0 {
			// value never occurs for this parameter
			return nil
		}
		lists = append(lists, list)
	}
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	result := lists[0]
	for _, list := range lists[1:] {
		result = intersect(result, list)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// intersect merges two sorted posting lists.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// checkKnown verifies that every selection key belongs to the parameter
// space.
func (ix *Index) checkKnown(sel Selection) error {
	for name := range sel {
		if _, ok := ix.inverted[name]; !ok {
			return &UnknownParameterError{Name: name, Known: ix.params}
		}
	}
	return nil
}

// sortValues orders values for display: numerically when every value
// parses as an integer (so "2" sorts before "10"), lexicographically
// otherwise. Ordering is a display concern only; equality always compares
// raw strings.
func sortValues(values []string) {
	nums := make(map[string]int64, len(values))
	for _, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			sort.Strings(values)
			return
		}
		nums[v] = n
	}
	sort.Slice(values, func(i, j int) bool {
		a, b := nums[values[i]], nums[values[j]]
		if a != b {
			return a < b
		}
		return values[i] < values[j]
	})
}

func paramNames(rec Record) []string {
	names := make([]string, 0, len(rec.Values))
	for name := range rec.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
