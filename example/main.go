package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/application/services/session"
	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Create repositories
	inventoryRepo := memory.NewInventoryRepository()
	beneficiaryRepo := memory.NewBeneficiaryRepository(3)
	setupBarangayData(inventoryRepo, beneficiaryRepo)

	s := session.New(session.Options{
		Inventory:     inventoryRepo,
		Beneficiaries: beneficiaryRepo,
		Programs:      memory.NewProgramRepository(inventoryRepo),
		EventStore:    events.NewInMemoryEventStore(nil),
		Debounce:      50 * time.Millisecond,
	})
	defer s.Close()

	fmt.Println("🌾 Opening allocation session...")
	if err := s.Open(ctx); err != nil {
		fmt.Printf("❌ Failed to open session: %v\n", err)
		return
	}

	store := s.Store()
	_ = store.SetMeta(entities.ProgramMeta{
		Title:     "Wet Season Fertilizer Support",
		Barangay:  "Poblacion",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	if _, err := store.AddItem(entities.ItemSpec{ItemName: "Fertilizer", Unit: "bag"}); err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	inv, _ := s.Snapshot().Get(1)
	_ = store.BindInventory(0, inv)

	added, _ := s.AddAllAvailable("Poblacion")
	fmt.Printf("Added %d beneficiaries from Poblacion\n", added)

	rows := make([]int, added)
	for i := range rows {
		rows[i] = i
	}
	_ = store.BulkSetQuantity(rows, map[int]string{0: "20"})

	printProjection(s)

	// Another office reserves stock while this draft is open
	fmt.Println("📞 Another office reserves 20 bags...")
	if _, err := inventoryRepo.ReserveStock(map[entities.InventoryID]decimal.Decimal{1: decimal.NewFromInt(20)}); err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}

	_ = store.BulkSetQuantity(rows, map[int]string{0: "15"})
	printProjection(s)

	outcome, err := s.Submit(ctx)
	if err != nil {
		fmt.Printf("❌ %s\n", outcome.Message)
		for _, c := range outcome.Conflicts {
			fmt.Printf("  %s: need %s %s, %s available, short %s\n",
				c.ItemName, c.Required, c.Unit, c.Available, c.Shortage)
		}
	}

	// Trim to what the server still has and resubmit
	s.DismissConflicts()
	_ = store.BulkSetQuantity(rows, map[int]string{0: "10"})
	outcome, err = s.Submit(ctx)
	if err != nil {
		fmt.Printf("❌ %s\n", outcome.Message)
		return
	}
	fmt.Printf("✅ Program created (id %s): %d beneficiaries, %d items\n",
		outcome.Program.ID, outcome.BeneficiaryCount, outcome.ItemCount)
}

func printProjection(s *session.Session) {
	fmt.Println("📊 Projected stock:")
	for _, sp := range s.Settle().Sorted() {
		fmt.Printf("  %s: %s allocated of %s %s, %s remaining\n",
			sp.ItemName, sp.Allocated, sp.OriginalStock, sp.Unit, sp.Remaining)
	}
	fmt.Println()
}

func setupBarangayData(inventoryRepo *memory.InventoryRepository, beneficiaryRepo *memory.BeneficiaryRepository) {
	inventoryRepo.AddInventoryItem(entities.InventoryItem{
		ID:       1,
		ItemName: "Fertilizer",
		Unit:     "bag",
		OnHand:   decimal.NewFromInt(50),
	})

	farmers := []*entities.Beneficiary{
		{ID: 1, Name: "Juan Dela Cruz", Barangay: "Poblacion", Commodity: "Rice"},
		{ID: 2, Name: "Maria Santos", Barangay: "Poblacion", Commodity: "Rice"},
		{ID: 3, Name: "Ana Lim", Barangay: "Poblacion", Commodity: "Rice"},
	}
	_ = beneficiaryRepo.LoadBeneficiaries(farmers)
}
