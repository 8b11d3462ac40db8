package solver

// indexer interface is design to give a unique index to a (day, shift) pair of a per-shift care array and vice versa
type indexer interface {
	// Returns the position of a (day, shift) pair inside workload and skill arrays
	Index(day, shift int) int
	// Returns the (day, shift) pair stored at a position of workload and skill arrays
	Attributes(index int) (day int, shift int)
}

func newIndexer(shifts int) indexer {
	return &indexerImplementation{
		shifts: shifts,
	}
}

type indexerImplementation struct {
	shifts int
}

func (indexer *indexerImplementation) Index(day, shift int) int {
	return day*indexer.shifts + shift
}

func (indexer *indexerImplementation) Attributes(index int) (day, shift int) {
	return index / indexer.shifts, index % indexer.shifts
}
