package pos

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func selection(id uuid.UUID, qty int) ComplementSelection {
	return ComplementSelection{
		Item: ItemSnapshot{
			ItemID:    id,
			Name:      "complement",
			Unit:      "UN",
			UnitPrice: decimal.NewFromInt(2),
		},
		Quantity: qty,
	}
}

func TestResolveBillableComplementsPoolsAcrossSelections(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// threshold 3 with [A,A,B,B,B]: A,A,B free, remaining B,B billed
	splits := ResolveBillableComplements(3, []ComplementSelection{
		selection(a, 2),
		selection(b, 3),
	})

	if len(splits) != 2 {
		t.Fatalf("expected 2 splits got %d", len(splits))
	}
	if splits[0].Free != 2 || splits[0].Billed != 0 {
		t.Fatalf("expected A fully free, got free=%d billed=%d", splits[0].Free, splits[0].Billed)
	}
	if splits[1].Free != 1 || splits[1].Billed != 2 {
		t.Fatalf("expected B 1 free / 2 billed, got free=%d billed=%d", splits[1].Free, splits[1].Billed)
	}
}

func TestResolveBillableComplementsSingleTypeOverflow(t *testing.T) {
	x := uuid.New()

	splits := ResolveBillableComplements(5, []ComplementSelection{selection(x, 6)})

	if splits[0].Free != 5 || splits[0].Billed != 1 {
		t.Fatalf("expected 5 free / 1 billed, got free=%d billed=%d", splits[0].Free, splits[0].Billed)
	}
}

func TestResolveBillableComplementsZeroThresholdBillsEverything(t *testing.T) {
	splits := ResolveBillableComplements(0, []ComplementSelection{
		selection(uuid.New(), 2),
		selection(uuid.New(), 1),
	})

	for i, split := range splits {
		if split.Free != 0 {
			t.Fatalf("split %d: expected no free units, got %d", i, split.Free)
		}
	}
	if splits[0].Billed != 2 || splits[1].Billed != 1 {
		t.Fatalf("expected every unit billed, got %+v", splits)
	}
}

func TestResolveBillableComplementsNegativeThresholdClamped(t *testing.T) {
	splits := ResolveBillableComplements(-4, []ComplementSelection{selection(uuid.New(), 3)})

	if splits[0].Free != 0 || splits[0].Billed != 3 {
		t.Fatalf("expected clamp to zero free, got %+v", splits[0])
	}
}

func TestResolveBillableComplementsRecomputesFromScratch(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	first := ResolveBillableComplements(2, []ComplementSelection{
		selection(a, 2),
		selection(b, 2),
	})
	if first[1].Billed != 2 {
		t.Fatalf("expected B fully billed before removal, got %+v", first[1])
	}

	// with A removed the freed budget shifts to B
	second := ResolveBillableComplements(2, []ComplementSelection{selection(b, 2)})
	if second[0].Free != 2 || second[0].Billed != 0 {
		t.Fatalf("expected B fully free after removal, got %+v", second[0])
	}
}
