package connectivity

import "github.com/bits-and-blooms/bitset"

// MarkNetAsDirty records that the membership of net changed. Negative codes
// are ignored; the set grows as needed.
func (a *Algorithm) MarkNetAsDirty(net int) {
	if net < 0 {
		return
	}
	a.dirtyNets.Set(uint(net))
}

// IsNetDirty reports whether net was marked since the last ClearDirtyNets.
func (a *Algorithm) IsNetDirty(net int) bool {
	return net >= 0 && a.dirtyNets.Test(uint(net))
}

// DirtyNets returns the dirty net codes in ascending order.
func (a *Algorithm) DirtyNets() []int {
	out := make([]int, 0, a.dirtyNets.Count())
	for i, ok := a.dirtyNets.NextSet(0); ok; i, ok = a.dirtyNets.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// ClearDirtyNets forgets every dirty mark, typically after the host
// refreshed its ratsnest.
func (a *Algorithm) ClearDirtyNets() {
	a.dirtyNets.ClearAll()
}

func newDirtyNets() *bitset.BitSet {
	return bitset.New(0)
}
