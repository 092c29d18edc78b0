package events

import (
	"fmt"

	"github.com/vsinha/quoteopt/pkg/domain/entities"
)

const (
	PinSetEvent              = "pin.set"
	PinClearedEvent          = "pin.cleared"
	PinsResetEvent           = "pins.reset"
	AllocationCompletedEvent = "allocation.completed"
	SelectionsStream         = "selections"
	RunsStream               = "runs"
)

type PinSet struct {
	PartNumber entities.PartNumber `json:"part_number"`
	Supplier   entities.SupplierID `json:"supplier"`
	// Previous is empty when the part had no pin.
	Previous entities.SupplierID `json:"previous,omitempty"`
}

func (e PinSet) String() string {
	if e.Previous == "" {
		return fmt.Sprintf("%s -> %s", e.PartNumber, e.Supplier)
	}
	return fmt.Sprintf("%s -> %s (was %s)", e.PartNumber, e.Supplier, e.Previous)
}

type PinCleared struct {
	PartNumber entities.PartNumber `json:"part_number"`
	Supplier   entities.SupplierID `json:"supplier"`
}

func (e PinCleared) String() string {
	return fmt.Sprintf("%s released from %s", e.PartNumber, e.Supplier)
}

type PinsReset struct {
	Cleared int `json:"cleared"`
}

func (e PinsReset) String() string {
	return fmt.Sprintf("%d pins cleared", e.Cleared)
}

type AllocationCompleted struct {
	RunID       string `json:"run_id"`
	Digest      string `json:"digest"`
	Lines       int    `json:"lines"`
	PinnedParts int    `json:"pinned_parts"`
}

func (e AllocationCompleted) String() string {
	digest := e.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return fmt.Sprintf("run %s: %d lines, %d pinned, digest %s", e.RunID, e.Lines, e.PinnedParts, digest)
}
