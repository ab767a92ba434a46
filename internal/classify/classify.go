// Package classify counts API-surface records against a predicate,
// with prefix-based path exclusions and stability accounting.
//
// Counting only ever considers stable records: an unstable item is
// invisible to both the matched and the excluded tallies. Exclusion is
// decided before the predicate runs, so an excluded record never
// counts as matched even when the predicate would accept it.
package classify

import (
	"strings"

	"rustdex/internal/flatten"
)

// Predicate reports whether a record belongs to the category being
// counted.
type Predicate func(flatten.Record) bool

// IsConst matches records flagged const.
func IsConst(r flatten.Record) bool { return r.IsConst }

// IsAsync matches records flagged async.
func IsAsync(r flatten.Record) bool { return r.IsAsync }

// ConstExcludePaths lists path prefixes whose items cannot become
// const fn regardless of signature, typically because they touch the
// operating system.
var ConstExcludePaths = []string{
	"std::os",
	"std::fs",
	"std::net",
	"std::process",
}

// AsyncExcludePaths lists path prefixes that make no sense to await.
var AsyncExcludePaths = []string{
	"core::ops",
	"std::thread",
	"core::any",
	"core::borrow",
	"core::marker",
	"core::panic",
	"core::clone",
	"core::default",
	"core::hash::Hash",
	"core::convert::AsRef",
	"core::convert::AsMut",
	"core::cmp",
}

// CountResult is the outcome of one counting pass. Matched and
// Excluded partition the interesting part of StableTotal; anything
// stable that is neither matched nor excluded simply did not satisfy
// the predicate.
type CountResult struct {
	Matched     int `json:"matched"`
	Excluded    int `json:"excluded"`
	StableTotal int `json:"stableTotal"`
}

// Add merges another result into r. Merging is associative and
// commutative, so per-graph results can be combined in any order.
func (r *CountResult) Add(other CountResult) {
	r.Matched += other.Matched
	r.Excluded += other.Excluded
	r.StableTotal += other.StableTotal
}

// Potential is the stable population the predicate could still reach:
// everything stable minus the exclusions.
func (r CountResult) Potential() int {
	return r.StableTotal - r.Excluded
}

// Ratio is Matched over Potential, or 0 when nothing is reachable.
func (r CountResult) Ratio() float64 {
	p := r.Potential()
	if p <= 0 {
		return 0
	}
	return float64(r.Matched) / float64(p)
}

// Count classifies items against pred. A record is excluded when its
// own path or, for trait impls, the trait's path starts with any of
// the given prefixes.
func Count(items []flatten.Record, pred Predicate, excludePrefixes []string) CountResult {
	var res CountResult
	for _, item := range items {
		if !item.Stability.IsStable() {
			continue
		}
		res.StableTotal++
		if matchesPrefix(item.Path, excludePrefixes) ||
			(item.TraitPath != "" && matchesPrefix(item.TraitPath, excludePrefixes)) {
			res.Excluded++
			continue
		}
		if pred(item) {
			res.Matched++
		}
	}
	return res
}

// CountConst counts const-flagged records with the const exclusions.
func CountConst(items []flatten.Record) CountResult {
	return Count(items, IsConst, ConstExcludePaths)
}

// CountAsync counts async-flagged records with the async exclusions.
func CountAsync(items []flatten.Record) CountResult {
	return Count(items, IsAsync, AsyncExcludePaths)
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
