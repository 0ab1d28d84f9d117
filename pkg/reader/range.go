package reader

import "fmt"

// StringRange is a half-open [Start, End) byte range into an input string.
type StringRange struct {
	Start int
	End   int
}

// At returns the empty range at pos
func At(pos int) StringRange {
	return StringRange{Start: pos, End: pos}
}

// Between returns the range [start, end)
func Between(start, end int) StringRange {
	return StringRange{Start: start, End: end}
}

// Encompassing returns the smallest range covering both a and b
func Encompassing(a, b StringRange) StringRange {
	return StringRange{Start: min(a.Start, b.Start), End: max(a.End, b.End)}
}

// IsEmpty reports whether the range covers no characters
func (r StringRange) IsEmpty() bool {
	return r.Start == r.End
}

// Length returns End - Start
func (r StringRange) Length() int {
	return r.End - r.Start
}

// Get returns the part of input covered by the range
func (r StringRange) Get(input string) string {
	return input[r.Start:r.End]
}

// Compare orders ranges by start, then end.
func (r StringRange) Compare(other StringRange) int {
	switch {
	case r.Start != other.Start:
		if r.Start < other.Start {
			return -1
		}
		return 1
	case r.End != other.End:
		if r.End < other.End {
			return -1
		}
		return 1
	}
	return 0
}

func (r StringRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
