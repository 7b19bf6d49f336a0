package race

// PointsTable holds the points for P1 to P10.
var PointsTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// PointsFor returns the points for a classified position. Retirements score
// nothing.
func PointsFor(position int, state State) int {
	if state != Finished || position < 1 || position > len(PointsTable) {
		return 0
	}
	return PointsTable[position-1]
}

// TablePoints is the total awarded in a race where at least ten cars finish.
func TablePoints() int {
	total := 0
	for _, p := range PointsTable {
		total += p
	}
	return total
}
