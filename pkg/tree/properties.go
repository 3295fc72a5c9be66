package tree

import "sort"

// PropertyChange records one key whose value differs between two
// matched nodes. A nil OldValue means the key was added; a nil NewValue
// means it was removed.
type PropertyChange struct {
	Key      string
	OldValue *string
	NewValue *string
}

// Properties is the per-node key-value capability. Implementations are
// supplied by the document model: HTML attributes, struct fields, map
// entries. Keeping properties out of the child list is what lets the
// edit script express an attribute change as a single UpdateProperty
// instead of a spurious Insert+Delete pair.
type Properties interface {
	// Similarity scores how alike two property sets are, from 0 to 1.
	// Bottom-up matching uses it to prefer candidates whose properties
	// agree.
	Similarity(other Properties) float64

	// Diff returns the changes needed to transform this property set
	// into other, one entry per differing key.
	Diff(other Properties) []PropertyChange

	// IsEmpty reports whether no properties are set.
	IsEmpty() bool
}

// NoProps is the Properties implementation for nodes without any
// key-value data.
type NoProps struct{}

// Similarity implements Properties. Two empty sets agree fully; an
// empty set shares nothing with a non-empty one.
func (NoProps) Similarity(other Properties) float64 {
	if other == nil || other.IsEmpty() {
		return 1
	}
	return 0
}

// Diff implements Properties: every key on the other side is an
// addition.
func (NoProps) Diff(other Properties) []PropertyChange {
	return AttrProps(nil).Diff(other)
}

// IsEmpty implements Properties.
func (NoProps) IsEmpty() bool { return true }

// AttrProps holds string key-value properties, e.g. HTML attributes.
// Key order is irrelevant; Diff reports changes in sorted key order so
// output is deterministic.
type AttrProps map[string]string

// Similarity implements Properties: the fraction of keys present on
// either side whose values agree.
func (p AttrProps) Similarity(other Properties) float64 {
	o, ok := other.(AttrProps)
	if !ok {
		return 0
	}
	total := 0
	same := 0
	for k, v := range p {
		total++
		if ov, present := o[k]; present && ov == v {
			same++
		}
	}
	for k := range o {
		if _, present := p[k]; !present {
			total++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(same) / float64(total)
}

// Diff implements Properties.
func (p AttrProps) Diff(other Properties) []PropertyChange {
	o, ok := other.(AttrProps)
	if !ok {
		o = nil
	}

	keys := make(map[string]struct{}, len(p)+len(o))
	for k := range p {
		keys[k] = struct{}{}
	}
	for k := range o {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []PropertyChange
	for _, k := range sorted {
		oldV, hasOld := p[k]
		newV, hasNew := o[k]
		if hasOld && hasNew && oldV == newV {
			continue
		}
		change := PropertyChange{Key: k}
		if hasOld {
			v := oldV
			change.OldValue = &v
		}
		if hasNew {
			v := newV
			change.NewValue = &v
		}
		changes = append(changes, change)
	}
	return changes
}

// IsEmpty implements Properties.
func (p AttrProps) IsEmpty() bool { return len(p) == 0 }
