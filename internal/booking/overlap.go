package booking

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) on the same date intersect. Intervals that merely touch
// at an endpoint do not overlap: a meeting ending at 10:00 never blocks
// one starting at 10:00.
//
// The booking repository applies the same predicate in SQL
// (overlapWhere in repository/booking_repository.go); the two must
// agree. Keep them in sync when changing either.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
