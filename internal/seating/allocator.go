// Package seating implements the seat-assignment algorithm for a performance.
// It is purely computational: callers supply the current occupancy and venue
// geometry, and get back a concrete seat selection. Nothing here touches the
// database, so the same allocator runs identically inside the ticket
// materialization transaction and in tests.
package seating

// Seat identifies one physical seat inside a performance's venue.
// Rows are zero-indexed, seat numbers start at 1.
type Seat struct {
	Row    int `json:"row"`
	Number int `json:"number"`
}

// Occupied is the set of seats already taken for a performance.
type Occupied map[Seat]bool

// NewOccupied builds an occupancy set from a list of seats.
func NewOccupied(seats ...Seat) Occupied {
	occ := make(Occupied, len(seats))
	for _, s := range seats {
		occ[s] = true
	}
	return occ
}

// Has reports whether the given seat is taken.
func (o Occupied) Has(row, number int) bool {
	return o[Seat{Row: row, Number: number}]
}

// Add marks a seat as taken.
func (o Occupied) Add(row, number int) {
	o[Seat{Row: row, Number: number}] = true
}

// Row zones by seat number. The left zone and the seats flanking the right
// aisle are kept out of the first allocation phase so that accessible groups
// retain somewhere to go. A zone whose min exceeds its max is simply empty,
// which is how the ranges degrade on very narrow rows.
const (
	leftZoneMin = 1
	leftZoneMax = 2
)

func normalZone(seatsPerRow int) (min, max int) {
	return leftZoneMax + 1, seatsPerRow - 2
}

// ContiguousBlocks scans seat numbers min..max ascending within one row and
// returns the maximal runs of unoccupied seats, in scan order. An empty range
// or a fully occupied range yields no blocks.
func ContiguousBlocks(occupied Occupied, row, min, max int) [][]int {
	var blocks [][]int
	var current []int

	for n := min; n <= max; n++ {
		if occupied.Has(row, n) {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, n)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

// PickBestBlock chooses the block a group of the given quantity should take.
// An exact-length block wins outright; otherwise the block with the smallest
// positive leftover is chosen, except that a leftover of exactly one seat is
// rejected unless acceptRemainderOne is set, since a stranded single seat next
// to a reserved group is nearly unsellable. Ties keep the earliest block.
// Seats are taken from the start of the chosen block. Returns nil when no
// block qualifies.
func PickBestBlock(blocks [][]int, quantity int, acceptRemainderOne bool) []int {
	if quantity <= 0 {
		return nil
	}

	var best []int
	bestLeftover := -1

	for _, block := range blocks {
		if len(block) < quantity {
			continue
		}
		leftover := len(block) - quantity
		if leftover == 0 {
			return block[:quantity]
		}
		if leftover == 1 && !acceptRemainderOne {
			continue
		}
		if bestLeftover == -1 || leftover < bestLeftover {
			best = block
			bestLeftover = leftover
		}
	}

	if best == nil {
		return nil
	}
	return best[:quantity]
}

// AssignSeats selects quantity seats for one group. The input occupancy is
// never mutated, so callers can process a batch of groups deterministically by
// folding each result back into a fresh set before the next call.
//
// Non-wheelchair groups are placed row by row with a three-phase escalation:
// the normal zone first, then the left zone folded in, then the full row with
// single-seat remainders tolerated. When no row can hold the group contiguously
// the allocator abandons contiguity entirely and fluid-fills in row-major
// order, returning whatever free seats exist (possibly fewer than requested).
//
// Wheelchair groups anchor at the right edge of a row, extending inward, so
// that the aisle stays reachable; the left edge is the second choice, and the
// regular algorithm the last resort.
func AssignSeats(occupied Occupied, rows, seatsPerRow, quantity int, wheelchair bool) []Seat {
	if quantity <= 0 || rows <= 0 || seatsPerRow <= 0 {
		return nil
	}

	if wheelchair {
		if seats := assignWheelchair(occupied, rows, seatsPerRow, quantity); seats != nil {
			return seats
		}
	}

	normalMin, normalMax := normalZone(seatsPerRow)

	for row := 0; row < rows; row++ {
		// Phase 1: normal zone only, no stranded singles.
		blocks := ContiguousBlocks(occupied, row, normalMin, normalMax)
		if picked := PickBestBlock(blocks, quantity, false); picked != nil {
			return seatsInRow(row, picked)
		}

		// Phase 2: left zone folded in.
		blocks = ContiguousBlocks(occupied, row, leftZoneMin, normalMax)
		if picked := PickBestBlock(blocks, quantity, false); picked != nil {
			return seatsInRow(row, picked)
		}

		// Phase 3: full row, stranded singles tolerated.
		blocks = ContiguousBlocks(occupied, row, 1, seatsPerRow)
		if picked := PickBestBlock(blocks, quantity, true); picked != nil {
			return seatsInRow(row, picked)
		}
	}

	return fluidFill(occupied, rows, seatsPerRow, quantity)
}

// assignWheelchair tries the right-edge anchored block in every row, then the
// left-edge block in every row. Returns nil when neither edge fits anywhere,
// letting AssignSeats fall through to the regular algorithm.
func assignWheelchair(occupied Occupied, rows, seatsPerRow, quantity int) []Seat {
	if quantity > seatsPerRow {
		return nil
	}

	for row := 0; row < rows; row++ {
		start := seatsPerRow - quantity + 1
		if blockFree(occupied, row, start, seatsPerRow) {
			return seatRange(row, start, seatsPerRow)
		}
	}

	for row := 0; row < rows; row++ {
		if blockFree(occupied, row, 1, quantity) {
			return seatRange(row, 1, quantity)
		}
	}

	return nil
}

// fluidFill collects the first quantity free seats in row-major, ascending-seat
// order, ignoring contiguity. Returns short (or empty) when the venue cannot
// satisfy the request.
func fluidFill(occupied Occupied, rows, seatsPerRow, quantity int) []Seat {
	var seats []Seat
	for row := 0; row < rows; row++ {
		for n := 1; n <= seatsPerRow; n++ {
			if occupied.Has(row, n) {
				continue
			}
			seats = append(seats, Seat{Row: row, Number: n})
			if len(seats) == quantity {
				return seats
			}
		}
	}
	return seats
}

func blockFree(occupied Occupied, row, from, to int) bool {
	if from < 1 || to < from {
		return false
	}
	for n := from; n <= to; n++ {
		if occupied.Has(row, n) {
			return false
		}
	}
	return true
}

func seatsInRow(row int, numbers []int) []Seat {
	seats := make([]Seat, len(numbers))
	for i, n := range numbers {
		seats[i] = Seat{Row: row, Number: n}
	}
	return seats
}

func seatRange(row, from, to int) []Seat {
	seats := make([]Seat, 0, to-from+1)
	for n := from; n <= to; n++ {
		seats = append(seats, Seat{Row: row, Number: n})
	}
	return seats
}
