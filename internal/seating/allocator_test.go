package seating

import (
	"reflect"
	"testing"
)

func TestContiguousBlocks_EmptyRow(t *testing.T) {
	blocks := ContiguousBlocks(NewOccupied(), 0, 3, 8)
	want := [][]int{{3, 4, 5, 6, 7, 8}}
	if !reflect.DeepEqual(blocks, want) {
		t.Fatalf("got %v, want %v", blocks, want)
	}
}

func TestContiguousBlocks_SplitsOnOccupied(t *testing.T) {
	occ := NewOccupied(Seat{Row: 0, Number: 4}, Seat{Row: 0, Number: 6})
	blocks := ContiguousBlocks(occ, 0, 3, 8)
	want := [][]int{{3}, {5}, {7, 8}}
	if !reflect.DeepEqual(blocks, want) {
		t.Fatalf("got %v, want %v", blocks, want)
	}
}

func TestContiguousBlocks_EmptyRange(t *testing.T) {
	if blocks := ContiguousBlocks(NewOccupied(), 0, 3, 2); len(blocks) != 0 {
		t.Fatalf("expected no blocks for empty range, got %v", blocks)
	}
}

func TestContiguousBlocks_FullyOccupied(t *testing.T) {
	occ := NewOccupied()
	for n := 3; n <= 8; n++ {
		occ.Add(0, n)
	}
	if blocks := ContiguousBlocks(occ, 0, 3, 8); len(blocks) != 0 {
		t.Fatalf("expected no blocks for fully occupied range, got %v", blocks)
	}
}

func TestContiguousBlocks_OtherRowIgnored(t *testing.T) {
	occ := NewOccupied(Seat{Row: 1, Number: 5})
	blocks := ContiguousBlocks(occ, 0, 3, 8)
	want := [][]int{{3, 4, 5, 6, 7, 8}}
	if !reflect.DeepEqual(blocks, want) {
		t.Fatalf("occupancy in another row leaked into scan: got %v", blocks)
	}
}

func TestPickBestBlock_ExactFitPreferred(t *testing.T) {
	blocks := [][]int{{3, 4, 5, 6, 7, 8}, {10, 11, 12}}
	picked := PickBestBlock(blocks, 3, false)
	want := []int{10, 11, 12}
	if !reflect.DeepEqual(picked, want) {
		t.Fatalf("got %v, want exact-fit block %v", picked, want)
	}
}

func TestPickBestBlock_RemainderOneRejected(t *testing.T) {
	blocks := [][]int{{3, 4, 5, 6}}
	if picked := PickBestBlock(blocks, 3, false); picked != nil {
		t.Fatalf("remainder-1 block should be rejected, got %v", picked)
	}
}

func TestPickBestBlock_RemainderOneAccepted(t *testing.T) {
	blocks := [][]int{{3, 4, 5, 6}}
	picked := PickBestBlock(blocks, 3, true)
	want := []int{3, 4, 5}
	if !reflect.DeepEqual(picked, want) {
		t.Fatalf("got %v, want %v", picked, want)
	}
}

func TestPickBestBlock_SmallestLeftoverWins(t *testing.T) {
	blocks := [][]int{{1, 2, 3, 4, 5, 6, 7}, {10, 11, 12, 13, 14}}
	picked := PickBestBlock(blocks, 3, false)
	want := []int{10, 11, 12}
	if !reflect.DeepEqual(picked, want) {
		t.Fatalf("got %v, want block with leftover 2 %v", picked, want)
	}
}

func TestPickBestBlock_TieKeepsEarliestBlock(t *testing.T) {
	blocks := [][]int{{1, 2, 3, 4, 5}, {10, 11, 12, 13, 14}}
	picked := PickBestBlock(blocks, 3, false)
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(picked, want) {
		t.Fatalf("equal leftovers must keep scan order: got %v, want %v", picked, want)
	}
}

func TestPickBestBlock_TooSmallBlocksSkipped(t *testing.T) {
	blocks := [][]int{{1, 2}, {5, 6}}
	if picked := PickBestBlock(blocks, 3, true); picked != nil {
		t.Fatalf("no block can hold the group, got %v", picked)
	}
}

func TestAssignSeats_NormalZoneFirst(t *testing.T) {
	seats := AssignSeats(NewOccupied(), 3, 10, 2, false)
	want := []Seat{{Row: 0, Number: 3}, {Row: 0, Number: 4}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want normal-zone start %v", seats, want)
	}
}

func TestAssignSeats_PhaseEscalationIntoLeftZone(t *testing.T) {
	// 3 rows x 10 seats: the normal zone [3,8] holds 6 seats, so a group of 5
	// leaves a stranded single and must spill into the left zone of row 0.
	seats := AssignSeats(NewOccupied(), 3, 10, 5, false)
	want := []Seat{
		{Row: 0, Number: 1}, {Row: 0, Number: 2}, {Row: 0, Number: 3},
		{Row: 0, Number: 4}, {Row: 0, Number: 5},
	}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want %v", seats, want)
	}
}

func TestAssignSeats_FullRowPhaseAcceptsRemainderOne(t *testing.T) {
	// Occupy 2..9 in every row except seat 1 and 10 free in row 0; a pair can
	// only sit in the full-row phase of a later row. Build a venue where rows
	// offer a remainder-1 fit only.
	occ := NewOccupied()
	// Row 0: seats 4..10 occupied; free run is [1,2,3]; group of 2 leaves a
	// remainder of 1 which phases 1 and 2 refuse but phase 3 accepts.
	for n := 4; n <= 10; n++ {
		occ.Add(0, n)
	}
	// Rows 1 and 2 fully occupied.
	for row := 1; row <= 2; row++ {
		for n := 1; n <= 10; n++ {
			occ.Add(row, n)
		}
	}
	seats := AssignSeats(occ, 3, 10, 2, false)
	want := []Seat{{Row: 0, Number: 1}, {Row: 0, Number: 2}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want %v", seats, want)
	}
}

func TestAssignSeats_FluidFillWhenFragmented(t *testing.T) {
	// Occupy every even seat so no row holds two contiguous seats anywhere.
	occ := NewOccupied()
	for row := 0; row < 2; row++ {
		for n := 2; n <= 10; n += 2 {
			occ.Add(row, n)
		}
	}
	seats := AssignSeats(occ, 2, 10, 3, false)
	want := []Seat{{Row: 0, Number: 1}, {Row: 0, Number: 3}, {Row: 0, Number: 5}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want row-major fluid fill %v", seats, want)
	}
}

func TestAssignSeats_FluidFillReturnsShortWhenVenueNearlyFull(t *testing.T) {
	occ := NewOccupied()
	for row := 0; row < 2; row++ {
		for n := 1; n <= 4; n++ {
			if row == 1 && n == 2 {
				continue // the only free seat left in the venue
			}
			occ.Add(row, n)
		}
	}
	seats := AssignSeats(occ, 2, 4, 3, false)
	want := []Seat{{Row: 1, Number: 2}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want short result %v", seats, want)
	}
}

func TestAssignSeats_WheelchairAnchorsRightEdge(t *testing.T) {
	seats := AssignSeats(NewOccupied(), 3, 10, 2, true)
	want := []Seat{{Row: 0, Number: 9}, {Row: 0, Number: 10}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want right-edge block %v", seats, want)
	}
}

func TestAssignSeats_WheelchairSecondGroupTakesNextRow(t *testing.T) {
	occ := NewOccupied(Seat{Row: 0, Number: 9}, Seat{Row: 0, Number: 10})
	seats := AssignSeats(occ, 3, 10, 2, true)
	want := []Seat{{Row: 1, Number: 9}, {Row: 1, Number: 10}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("right edges of later rows come before any left edge: got %v, want %v", seats, want)
	}
}

func TestAssignSeats_WheelchairFallsBackToLeftEdge(t *testing.T) {
	occ := NewOccupied()
	for row := 0; row < 2; row++ {
		occ.Add(row, 9)
		occ.Add(row, 10)
	}
	seats := AssignSeats(occ, 2, 10, 2, true)
	want := []Seat{{Row: 0, Number: 1}, {Row: 0, Number: 2}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want left-edge block %v", seats, want)
	}
}

func TestAssignSeats_WheelchairFallsBackToNormalAlgorithm(t *testing.T) {
	occ := NewOccupied()
	for row := 0; row < 2; row++ {
		occ.Add(row, 1)
		occ.Add(row, 2)
		occ.Add(row, 9)
		occ.Add(row, 10)
	}
	seats := AssignSeats(occ, 2, 10, 2, true)
	want := []Seat{{Row: 0, Number: 3}, {Row: 0, Number: 4}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want normal-zone fallback %v", seats, want)
	}
}

func TestAssignSeats_Deterministic(t *testing.T) {
	occ := NewOccupied(Seat{Row: 0, Number: 4}, Seat{Row: 1, Number: 7})
	first := AssignSeats(occ, 3, 10, 4, false)
	second := AssignSeats(occ, 3, 10, 4, false)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different selections: %v vs %v", first, second)
	}
}

func TestAssignSeats_DoesNotMutateOccupancy(t *testing.T) {
	occ := NewOccupied(Seat{Row: 0, Number: 5})
	AssignSeats(occ, 3, 10, 4, false)
	if len(occ) != 1 || !occ.Has(0, 5) {
		t.Fatalf("occupancy mutated: %v", occ)
	}
}

func TestAssignSeats_BatchProcessingIsCollisionFree(t *testing.T) {
	// Process a batch of groups the way ticket materialization does: fold each
	// selection back into the occupancy before the next call, and verify every
	// assigned seat is distinct.
	occ := NewOccupied()
	seen := map[Seat]bool{}
	groups := []struct {
		quantity   int
		wheelchair bool
	}{
		{3, false}, {2, true}, {4, false}, {1, false}, {2, false},
	}

	for _, g := range groups {
		seats := AssignSeats(occ, 4, 8, g.quantity, g.wheelchair)
		if len(seats) != g.quantity {
			t.Fatalf("group %+v got %d seats, want %d", g, len(seats), g.quantity)
		}
		for _, s := range seats {
			if seen[s] {
				t.Fatalf("seat %+v assigned twice", s)
			}
			seen[s] = true
			occ[s] = true
		}
	}
}

func TestAssignSeats_NarrowRowZonesDegrade(t *testing.T) {
	// With 4 seats per row the normal zone [3,2] is empty; phase 2 covers
	// [1,2] and phase 3 the full row.
	seats := AssignSeats(NewOccupied(), 2, 4, 2, false)
	want := []Seat{{Row: 0, Number: 1}, {Row: 0, Number: 2}}
	if !reflect.DeepEqual(seats, want) {
		t.Fatalf("got %v, want %v", seats, want)
	}
}

func TestAssignSeats_ZeroQuantity(t *testing.T) {
	if seats := AssignSeats(NewOccupied(), 3, 10, 0, false); seats != nil {
		t.Fatalf("expected nil for zero quantity, got %v", seats)
	}
}
