package entities

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// AllocationRun is one consolidation result together with the pins it was computed from
type AllocationRun struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Selections SupplierSelection `json:"selections"`
	Lines      []AllocationLine  `json:"lines"`
	Digest     string            `json:"digest"`
}

// ComputeAllocationDigest hashes the canonical encoding of lines.
//
// Formula: SHA256(line_1 + "\n" + line_2 + ...), where each line is
// part|supplier|qty|unit_price|total_cost|source with decimals in canonical string form.
func ComputeAllocationDigest(lines []AllocationLine) string {
	h := sha256.New()
	for _, line := range lines {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s\n",
			line.PartNumber,
			line.Supplier,
			line.QtyAllocated.String(),
			line.UnitPrice.String(),
			line.TotalCost.String(),
			line.Source,
		)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
