package entities

import "sort"

// SupplierSelection maps a part to the supplier the operator pinned for it.
// Only pinned parts are present.
type SupplierSelection map[PartNumber]SupplierID

// Get returns the pinned supplier for a part
func (s SupplierSelection) Get(partNumber PartNumber) (SupplierID, bool) {
	supplier, ok := s[partNumber]
	return supplier, ok
}

// Clone returns an independent copy
func (s SupplierSelection) Clone() SupplierSelection {
	out := make(SupplierSelection, len(s))
	for part, supplier := range s {
		out[part] = supplier
	}
	return out
}

// Parts returns pinned part numbers in sorted order
func (s SupplierSelection) Parts() []PartNumber {
	parts := make([]PartNumber, 0, len(s))
	for part := range s {
		parts = append(parts, part)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
	return parts
}
