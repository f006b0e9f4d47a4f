// Package selection tracks which tab groups take part in the next export.
//
// Groups are addressed by (partition, index) pairs. Each partition holds
// either "every group" or an explicit, possibly empty, set of indexes.
package selection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lotas/tabsalvage/internal/types"
)

// Key addresses one group.
type Key struct {
	Partition types.Partition
	Index     uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Partition, k.Index)
}

// GroupSet is either every group of a partition or an explicit index set.
// The zero value selects every group. Values are safe to copy.
type GroupSet struct {
	explicit bool
	indexes  []uint32 // sorted, unique
}

// All selects every group of a partition.
func All() GroupSet { return GroupSet{} }

// None selects no group of a partition.
func None() GroupSet { return GroupSet{explicit: true} }

// Of selects exactly the given indexes.
func Of(indexes ...uint32) GroupSet {
	s := None()
	for _, i := range indexes {
		s, _ = s.with(i)
	}
	return s
}

// IsAll reports whether the set stands for every group.
func (s GroupSet) IsAll() bool { return !s.explicit }

// Includes reports whether the group at index is exported.
func (s GroupSet) Includes(index uint32) bool {
	return !s.explicit || s.Explicit(index)
}

// Explicit reports whether index was selected by name, not through "all".
func (s GroupSet) Explicit(index uint32) bool {
	_, found := slices.BinarySearch(s.indexes, index)
	return s.explicit && found
}

// Indexes returns the explicit indexes in ascending order.
func (s GroupSet) Indexes() []uint32 {
	return slices.Clone(s.indexes)
}

// Count resolves the set against a partition holding total groups.
func (s GroupSet) Count(total int) int {
	if !s.explicit {
		return total
	}
	n := 0
	for _, i := range s.indexes {
		if int(i) < total {
			n++
		}
	}
	return n
}

func (s GroupSet) String() string {
	if !s.explicit {
		return "all"
	}
	if len(s.indexes) == 0 {
		return "none"
	}
	parts := make([]string, len(s.indexes))
	for i, idx := range s.indexes {
		parts[i] = strconv.FormatUint(uint64(idx), 10)
	}
	return strings.Join(parts, ",")
}

// ParseGroupSet accepts "all", "none" (or empty) or a comma separated list
// of indexes.
func ParseGroupSet(v string) (GroupSet, error) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "all":
		return All(), nil
	case "", "none":
		return None(), nil
	}
	s := None()
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return GroupSet{}, fmt.Errorf("invalid group index %q", part)
		}
		s, _ = s.with(uint32(n))
	}
	return s, nil
}

// materialize turns "all" into an explicit empty set.
func (s GroupSet) materialize() (GroupSet, bool) {
	if s.explicit {
		return s, false
	}
	return None(), true
}

func (s GroupSet) with(index uint32) (GroupSet, bool) {
	pos, found := slices.BinarySearch(s.indexes, index)
	if found {
		return s, false
	}
	return GroupSet{explicit: true, indexes: slices.Insert(slices.Clone(s.indexes), pos, index)}, true
}

func (s GroupSet) without(index uint32) (GroupSet, bool) {
	pos, found := slices.BinarySearch(s.indexes, index)
	if !s.explicit || !found {
		return s, false
	}
	return GroupSet{explicit: true, indexes: slices.Delete(slices.Clone(s.indexes), pos, pos+1)}, true
}

// GenerateOptions is the group selection handed to the renderer.
type GenerateOptions struct {
	OpenGroupIndexes   GroupSet
	ClosedGroupIndexes GroupSet
	// DropDuplicates skips tabs whose page was already listed by an earlier
	// selected group.
	DropDuplicates bool
}

// DefaultOptions selects every open window and no closed ones.
func DefaultOptions() GenerateOptions {
	return GenerateOptions{
		OpenGroupIndexes:   All(),
		ClosedGroupIndexes: None(),
	}
}

func (o GenerateOptions) String() string {
	s := fmt.Sprintf("open=%s closed=%s", o.OpenGroupIndexes, o.ClosedGroupIndexes)
	if o.DropDuplicates {
		s += " dedupe"
	}
	return s
}

// Set returns the selection of one partition.
func (o GenerateOptions) Set(p types.Partition) GroupSet {
	if p == types.PartitionClosed {
		return o.ClosedGroupIndexes
	}
	return o.OpenGroupIndexes
}

func (o *GenerateOptions) setPartition(p types.Partition, s GroupSet) {
	if p == types.PartitionClosed {
		o.ClosedGroupIndexes = s
	} else {
		o.OpenGroupIndexes = s
	}
}

// Includes reports whether the group at k is exported.
func (o GenerateOptions) Includes(k Key) bool {
	return o.Set(k.Partition).Includes(k.Index)
}

// SelectedGroups counts the groups that would be exported.
func (o GenerateOptions) SelectedGroups(groups types.AllTabGroups) int {
	return o.OpenGroupIndexes.Count(len(groups.Open)) + o.ClosedGroupIndexes.Count(len(groups.Closed))
}

// Policy decides what happens when the last selected group is removed.
type Policy int

const (
	// FallbackSelectAllOpen snaps back to every open window.
	FallbackSelectAllOpen Policy = iota
	// FallbackNone keeps the empty selection.
	FallbackNone
)

// ParsePolicy accepts "open" or "none".
func ParsePolicy(v string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "open":
		return FallbackSelectAllOpen, nil
	case "none":
		return FallbackNone, nil
	default:
		return 0, fmt.Errorf("unknown selection fallback %q (want open or none)", v)
	}
}

// Model applies select and deselect events to GenerateOptions for one
// immutable group listing.
type Model struct {
	Groups   types.AllTabGroups
	Options  GenerateOptions
	Fallback Policy
}

// NewModel starts with DefaultOptions.
func NewModel(groups types.AllTabGroups, fallback Policy) *Model {
	return &Model{
		Groups:   groups,
		Options:  DefaultOptions(),
		Fallback: fallback,
	}
}

// Reset restores the default group selection. DropDuplicates is kept.
func (m *Model) Reset() {
	dedupe := m.Options.DropDuplicates
	m.Options = DefaultOptions()
	m.Options.DropDuplicates = dedupe
}

// SelectedGroups counts the groups currently exported.
func (m *Model) SelectedGroups() int {
	return m.Options.SelectedGroups(m.Groups)
}

func (m *Model) inRange(k Key) bool {
	return int(k.Index) < m.Groups.Len(k.Partition)
}

func other(p types.Partition) types.Partition {
	if p == types.PartitionOpen {
		return types.PartitionClosed
	}
	return types.PartitionOpen
}

// Select adds k to its partition's explicit set. Selecting narrows the other
// partition from "all" to an explicit set as well. Reports whether the
// selection changed.
func (m *Model) Select(k Key) bool {
	if !m.inRange(k) {
		return false
	}
	target, materialized := m.Options.Set(k.Partition).materialize()
	target, added := target.with(k.Index)
	rest, restMaterialized := m.Options.Set(other(k.Partition)).materialize()

	m.Options.setPartition(k.Partition, target)
	m.Options.setPartition(other(k.Partition), rest)
	return materialized || added || restMaterialized
}

// Deselect removes k from its partition's explicit set. Deselecting from a
// partition that selects "all" does nothing. Reports whether the selection
// changed.
func (m *Model) Deselect(k Key) bool {
	target, removed := m.Options.Set(k.Partition).without(k.Index)
	if !removed {
		return false
	}
	m.Options.setPartition(k.Partition, target)

	if m.Fallback == FallbackSelectAllOpen && m.SelectedGroups() == 0 {
		m.Options.OpenGroupIndexes = All()
		m.Options.ClosedGroupIndexes, _ = m.Options.ClosedGroupIndexes.materialize()
	}
	return true
}

// Toggle selects k unless it is explicitly selected already.
func (m *Model) Toggle(k Key) bool {
	if m.Options.Set(k.Partition).Explicit(k.Index) {
		return m.Deselect(k)
	}
	return m.Select(k)
}
