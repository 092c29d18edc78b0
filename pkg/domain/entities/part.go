package entities

import "strings"

// PartNumber represents a unique part identifier
type PartNumber string

// SupplierID identifies a quoting supplier. Quote files name their supplier.
type SupplierID string

// Sentinel supplier values used on lines that are not backed by a real supplier.
// Downstream grouping and filtering rely on these exact literals.
const (
	SupplierNotAvailable   SupplierID = "NOT AVAILABLE"
	SupplierShortage       SupplierID = "SHORTAGE"
	SupplierExportShortage SupplierID = "N/A (SHORTAGE)"
)

var sentinelSuppliers = map[SupplierID]struct{}{
	SupplierNotAvailable:   {},
	SupplierShortage:       {},
	SupplierExportShortage: {},
}

// IsSentinelSupplier reports whether s is one of the sentinel supplier values
func IsSentinelSupplier(s SupplierID) bool {
	_, ok := sentinelSuppliers[s]
	return ok
}

// SentinelSuppliers returns the shared sentinel set in a stable order
func SentinelSuppliers() []SupplierID {
	return []SupplierID{SupplierNotAvailable, SupplierShortage, SupplierExportShortage}
}

// ShortName truncates a supplier name for column headers
func (s SupplierID) ShortName(max int) string {
	r := []rune(string(s))
	if len(r) <= max {
		return string(s)
	}
	return string(r[:max])
}

var fileNameReplacer = strings.NewReplacer(
	" ", "_", "/", "_", "\\", "_", "?", "_", "*", "_",
	"[", "_", "]", "_", ":", "_", "(", "_", ")", "_",
)

// FileSlug returns a lowercase, underscore separated form suitable for file names
func (s SupplierID) FileSlug() string {
	return fileNameReplacer.Replace(strings.ToLower(string(s)))
}
