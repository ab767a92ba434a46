package classify

import "rustdex/internal/flatten"

// CategorySummary tallies one record kind.
type CategorySummary struct {
	Total    int `json:"total"`
	Stable   int `json:"stable"`
	Unstable int `json:"unstable"`
	Generic  int `json:"generic"`
}

func (c *CategorySummary) add(r flatten.Record) {
	c.Total++
	if r.Stability.IsStable() {
		c.Stable++
	} else {
		c.Unstable++
	}
	if r.HasGenerics {
		c.Generic++
	}
}

// Add merges another category tally into c.
func (c *CategorySummary) Add(other CategorySummary) {
	c.Total += other.Total
	c.Stable += other.Stable
	c.Unstable += other.Unstable
	c.Generic += other.Generic
}

// Summary breaks a record set down by kind.
type Summary struct {
	Traits    CategorySummary `json:"traits"`
	Structs   CategorySummary `json:"structs"`
	Enums     CategorySummary `json:"enums"`
	Functions CategorySummary `json:"functions"`
	Impls     CategorySummary `json:"impls"`
}

// Summarize tallies every record by kind. Summaries of disjoint record
// sets combine with Add in any order.
func Summarize(items []flatten.Record) Summary {
	var s Summary
	for _, item := range items {
		switch item.Kind {
		case flatten.KindTrait:
			s.Traits.add(item)
		case flatten.KindStruct:
			s.Structs.add(item)
		case flatten.KindEnum:
			s.Enums.add(item)
		case flatten.KindFunction:
			s.Functions.add(item)
		case flatten.KindImpl:
			s.Impls.add(item)
		}
	}
	return s
}

// Add merges another summary into s.
func (s *Summary) Add(other Summary) {
	s.Traits.Add(other.Traits)
	s.Structs.Add(other.Structs)
	s.Enums.Add(other.Enums)
	s.Functions.Add(other.Functions)
	s.Impls.Add(other.Impls)
}

// Totals collapses the per-kind tallies into one.
func (s Summary) Totals() CategorySummary {
	var t CategorySummary
	t.Add(s.Traits)
	t.Add(s.Structs)
	t.Add(s.Enums)
	t.Add(s.Functions)
	t.Add(s.Impls)
	return t
}
