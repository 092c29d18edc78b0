package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoteopt/pkg/application/services/session"
	"github.com/vsinha/quoteopt/pkg/domain/entities"
	"github.com/vsinha/quoteopt/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Create repositories
	orderRepo := memory.NewOrderRepository(3)
	quoteRepo := memory.NewQuoteRepository()

	// A small harness order quoted by three distributors
	setupHarnessOrder(orderRepo, quoteRepo)

	sess, err := session.New(session.Config{
		Orders:     orderRepo,
		Quotes:     quoteRepo,
		Selections: memory.NewSelectionRepository(),
		Runs:       memory.NewAllocationRunRepository(),
	})
	if err != nil {
		fmt.Printf("❌ Session failed: %v\n", err)
		return
	}

	fmt.Println("🔄 Running cheapest-first allocation...")
	auto, err := sess.Run(ctx)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}
	printLines(auto.Lines())
	fmt.Printf("Total cost: %s\n\n", auto.Summary.TotalCost.StringFixed(2))

	// Buyer prefers one distributor for the connector
	fmt.Println("📌 Pinning CONN-12P to Northwind...")
	if err := sess.SetPin(ctx, "CONN-12P", "Northwind"); err != nil {
		fmt.Printf("❌ Pin failed: %v\n", err)
		return
	}

	pinned, err := sess.Run(ctx)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}
	printLines(pinned.Lines())

	cmp := pinned.CostComparison
	fmt.Printf("Auto-optimized: %s\n", cmp.AutoCost.StringFixed(2))
	fmt.Printf("With pins:      %s\n", cmp.ManualCost.StringFixed(2))
	fmt.Printf("Difference:     %s\n", cmp.Difference.StringFixed(2))
}

func setupHarnessOrder(orderRepo *memory.OrderRepository, quoteRepo *memory.QuoteRepository) {
	orders := []*entities.OrderLine{
		{PartNumber: "CONN-12P", QtyRequired: decimal.NewFromInt(40)},
		{PartNumber: "WIRE-22AWG", QtyRequired: decimal.NewFromInt(500)},
		{PartNumber: "BOOT-SEAL", QtyRequired: decimal.NewFromInt(40)},
	}
	_ = orderRepo.LoadOrders(orders)

	price := decimal.RequireFromString
	offers := []*entities.QuoteOffer{
		{PartNumber: "CONN-12P", Supplier: "Contoso", UnitPrice: price("3.10"), AvailableQty: decimal.NewFromInt(25)},
		{PartNumber: "CONN-12P", Supplier: "Northwind", UnitPrice: price("3.45"), AvailableQty: decimal.NewFromInt(100)},
		{PartNumber: "CONN-12P", Supplier: "Fabrikam", UnitPrice: price("3.20"), AvailableQty: decimal.NewFromInt(10)},
		{PartNumber: "WIRE-22AWG", Supplier: "Contoso", UnitPrice: price("0.12"), AvailableQty: decimal.NewFromInt(300)},
		{PartNumber: "WIRE-22AWG", Supplier: "Fabrikam", UnitPrice: price("0.15"), AvailableQty: decimal.NewFromInt(100)},
	}
	_ = quoteRepo.LoadOffers(offers)
}

func printLines(lines []entities.AllocationLine) {
	fmt.Printf("%-12s %-14s %6s %8s %10s  %s\n", "Part", "Supplier", "Qty", "Price", "Total", "Source")
	for _, line := range lines {
		fmt.Printf("%-12s %-14s %6s %8s %10s  %s\n",
			line.PartNumber,
			line.Supplier,
			line.QtyAllocated,
			line.UnitPrice.StringFixed(2),
			line.TotalCost.StringFixed(2),
			line.Source)
	}
}
