package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderLine is one required part on the order
type OrderLine struct {
	PartNumber  PartNumber      `json:"part_number"`
	QtyRequired decimal.Decimal `json:"qty_required"`
}

// NewOrderLine creates a validated OrderLine
func NewOrderLine(partNumber PartNumber, qtyRequired decimal.Decimal) (*OrderLine, error) {
	if string(partNumber) == "" {
		return nil, fmt.Errorf("part number cannot be empty")
	}
	if !qtyRequired.IsPositive() {
		return nil, fmt.Errorf("qty required must be positive, got %s", qtyRequired)
	}

	return &OrderLine{
		PartNumber:  partNumber,
		QtyRequired: qtyRequired,
	}, nil
}
