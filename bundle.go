package asmcmp

import "strconv"

// BuildBundleFlags controls which index lists BuildBundles populates on
// each Bundle, per spec.md §4.4.
type BuildBundleFlags uint8

const (
	BuildMatchedFunctionIndices BuildBundleFlags = 1 << iota
	BuildMatchedNamedFunctionIndices
	BuildUnmatchedNamedFunctionIndices
	BuildAllNamedFunctionIndices

	BuildBundleFlagsAll BuildBundleFlags = 0xff
)

// BundleMode selects how matched functions are grouped into bundles.
type BundleMode int

const (
	BundleByCompiland BundleMode = iota
	BundleBySourceFile
	BundleNone // a single bundle containing everything
)

// Bundle groups function matches that share a compiland or source file
// (or, under BundleNone, groups everything into one bundle).
type Bundle struct {
	Name string

	MatchedFunctionIndices      []int // into a MatchedFunctions slice
	MatchedNamedFunctionIndices []int // into a NamedFunctions slice, in sync with the above
	UnmatchedNamedFunctionIndices []int
	AllNamedFunctionIndices     []int
}

// BuildBundles groups matched and left-over named functions by mode,
// populating only the index lists flags selects.
func BuildBundles(mode BundleMode, matched []MatchedFunction, left, right []NamedFunction, flags BuildBundleFlags) []Bundle {
	if mode == BundleNone {
		return []Bundle{buildSingleBundle("all", matched, left, flags)}
	}

	byName := make(map[string]*Bundle)
	var order []string

	bundleFor := func(name string) *Bundle {
		b, ok := byName[name]
		if !ok {
			b = &Bundle{Name: name}
			byName[name] = b
			order = append(order, name)
		}
		return b
	}

	for i, mf := range matched {
		name := bundleKey(mode, mf.Left)
		b := bundleFor(name)
		if flags&BuildMatchedFunctionIndices != 0 {
			b.MatchedFunctionIndices = append(b.MatchedFunctionIndices, i)
		}
		if flags&BuildMatchedNamedFunctionIndices != 0 {
			b.MatchedNamedFunctionIndices = append(b.MatchedNamedFunctionIndices, indexOfNamedFunction(left, mf.Left))
		}
	}

	matchedSet := make(map[int]bool)
	for _, mf := range matched {
		matchedSet[indexOfNamedFunction(left, mf.Left)] = true
	}

	for i := range left {
		name := bundleKey(mode, &left[i])
		b := bundleFor(name)
		if flags&BuildAllNamedFunctionIndices != 0 {
			b.AllNamedFunctionIndices = append(b.AllNamedFunctionIndices, i)
		}
		if flags&BuildUnmatchedNamedFunctionIndices != 0 && !matchedSet[i] {
			b.UnmatchedNamedFunctionIndices = append(b.UnmatchedNamedFunctionIndices, i)
		}
	}

	bundles := make([]Bundle, 0, len(order))
	for _, name := range order {
		bundles = append(bundles, *byName[name])
	}
	return bundles
}

func buildSingleBundle(name string, matched []MatchedFunction, left []NamedFunction, flags BuildBundleFlags) Bundle {
	b := Bundle{Name: name}
	for i, mf := range matched {
		if flags&BuildMatchedFunctionIndices != 0 {
			b.MatchedFunctionIndices = append(b.MatchedFunctionIndices, i)
		}
		if flags&BuildMatchedNamedFunctionIndices != 0 {
			b.MatchedNamedFunctionIndices = append(b.MatchedNamedFunctionIndices, indexOfNamedFunction(left, mf.Left))
		}
	}
	matchedSet := make(map[int]bool)
	for _, mf := range matched {
		matchedSet[indexOfNamedFunction(left, mf.Left)] = true
	}
	for i := range left {
		if flags&BuildAllNamedFunctionIndices != 0 {
			b.AllNamedFunctionIndices = append(b.AllNamedFunctionIndices, i)
		}
		if flags&BuildUnmatchedNamedFunctionIndices != 0 && !matchedSet[i] {
			b.UnmatchedNamedFunctionIndices = append(b.UnmatchedNamedFunctionIndices, i)
		}
	}
	return b
}

func bundleKey(mode BundleMode, nf *NamedFunction) string {
	if nf == nil {
		return ""
	}
	if mode == BundleBySourceFile {
		return sourceFileKey(nf.SourceFileIndex)
	}
	return compilandKey(nf.CompilandIndex)
}

func compilandKey(idx int) string {
	return indexKey("compiland", idx)
}

func sourceFileKey(idx int) string {
	return indexKey("sourcefile", idx)
}

func indexKey(kind string, idx int) string {
	if idx < 0 {
		return kind + ":unknown"
	}
	return kind + ":" + strconv.Itoa(idx)
}

func indexOfNamedFunction(all []NamedFunction, target *NamedFunction) int {
	if target == nil {
		return -1
	}
	for i := range all {
		if &all[i] == target {
			return i
		}
	}
	return -1
}
