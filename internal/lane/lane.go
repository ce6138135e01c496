// Package lane resolves the mapping between boat numbers and the
// navigational lanes the boats actually take at the start.
//
// Boat numbers are fixed by the day's draw; lanes are what the operator
// observes. The mapping is always recomputed from the full lane order, never
// patched incrementally, so one edit can never leave a stale bijection.
package lane

// Unassigned is the sentinel lane for a boat not placed in the lane order.
const Unassigned = 0

// Assignment is a bijection between boat number and lane, with lane 0 for
// boats the order did not place. Zero value: every boat unassigned.
type Assignment struct {
	laneByBoat [7]int // index 1..6
	boatByLane [7]int // index 1..6
}

// Resolve builds an Assignment from a lane order: order[0] is the boat in
// lane 1, order[1] the boat in lane 2, and so on. Slots naming a boat
// outside 1..6, or a boat already placed in an earlier slot, are ignored;
// boats left unplaced resolve to lane 0.
func Resolve(order []int) Assignment {
	var a Assignment
	for i, boat := range order {
		laneNo := i + 1
		if laneNo > 6 {
			break
		}
		if boat < 1 || boat > 6 {
			continue
		}
		if a.laneByBoat[boat] != Unassigned {
			// Duplicate slot; first placement wins.
			continue
		}
		a.laneByBoat[boat] = laneNo
		a.boatByLane[laneNo] = boat
	}
	return a
}

// Default returns the draw-order assignment: boat n in lane n.
func Default() Assignment {
	return Resolve([]int{1, 2, 3, 4, 5, 6})
}

// LaneOf returns the lane a boat takes, or Unassigned.
func (a Assignment) LaneOf(boat int) int {
	if boat < 1 || boat > 6 {
		return Unassigned
	}
	return a.laneByBoat[boat]
}

// BoatAt returns the boat in a lane, or 0 when the lane is empty.
func (a Assignment) BoatAt(laneNo int) int {
	if laneNo < 1 || laneNo > 6 {
		return 0
	}
	return a.boatByLane[laneNo]
}

// Complete reports whether all six boats are placed.
func (a Assignment) Complete() bool {
	for boat := 1; boat <= 6; boat++ {
		if a.laneByBoat[boat] == Unassigned {
			return false
		}
	}
	return true
}

// Order returns the lane order as submitted: the boat in each lane 1..6,
// 0 for empty lanes.
func (a Assignment) Order() []int {
	out := make([]int, 6)
	for laneNo := 1; laneNo <= 6; laneNo++ {
		out[laneNo-1] = a.boatByLane[laneNo]
	}
	return out
}
