package arguments

import (
	"fmt"
	"math"

	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/reader"
)

type numeric interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// Number is a bounded numeric argument. The zero bound flags mean the
// value is limited only by the range of T.
type Number[T numeric] struct {
	name     string
	min, max T
	hasMin   bool
	hasMax   bool
	floor    T // smallest value of T, shown when only a max is set
	read     func(*reader.StringReader) (T, error)
	tooLow   cmderr.Kind
	tooHigh  cmderr.Kind
	examples []string
}

// Min returns the lower bound, if any
func (n *Number[T]) Min() (T, bool) { return n.min, n.hasMin }

// Max returns the upper bound, if any
func (n *Number[T]) Max() (T, bool) { return n.max, n.hasMax }

// WithMin returns a copy with a lower bound.
func (n *Number[T]) WithMin(v T) *Number[T] {
	c := *n
	c.min, c.hasMin = v, true
	return &c
}

// WithMax returns a copy with an upper bound.
func (n *Number[T]) WithMax(v T) *Number[T] {
	c := *n
	c.max, c.hasMax = v, true
	return &c
}

// Parse reads an unbounded value, then checks it against the bounds. A
// value out of range leaves the cursor before the value.
func (n *Number[T]) Parse(r *reader.StringReader) (any, error) {
	start := r.Cursor()
	v, err := n.read(r)
	if err != nil {
		return nil, err
	}
	if n.hasMin && v < n.min {
		r.SetCursor(start)
		return nil, cmderr.New(n.tooLow, r.String(), start).WithBound(v, n.min)
	}
	if n.hasMax && v > n.max {
		r.SetCursor(start)
		return nil, cmderr.New(n.tooHigh, r.String(), start).WithBound(v, n.max)
	}
	return v, nil
}

func (n *Number[T]) Examples() []string {
	return n.examples
}

func (n *Number[T]) String() string {
	switch {
	case !n.hasMin && !n.hasMax:
		return n.name
	case !n.hasMax:
		return fmt.Sprintf("%s(%v)", n.name, n.min)
	case !n.hasMin:
		return fmt.Sprintf("%s(%v, %v)", n.name, n.floor, n.max)
	}
	return fmt.Sprintf("%s(%v, %v)", n.name, n.min, n.max)
}

var (
	integerExamples  = []string{"0", "123", "-123"}
	floatingExamples = []string{"0", "1.2", ".5", "-1", "-.5", "-1234.56"}
)

// Integer returns an int32 argument type
func Integer() *Number[int32] {
	return &Number[int32]{
		name:     "integer",
		floor:    math.MinInt32,
		read:     (*reader.StringReader).ReadInt,
		tooLow:   cmderr.IntegerTooLow,
		tooHigh:  cmderr.IntegerTooHigh,
		examples: integerExamples,
	}
}

// IntegerMin returns an int32 argument type with a lower bound
func IntegerMin(min int32) *Number[int32] { return Integer().WithMin(min) }

// IntegerRange returns an int32 argument type bounded on both sides
func IntegerRange(min, max int32) *Number[int32] { return Integer().WithMin(min).WithMax(max) }

// Long returns an int64 argument type
func Long() *Number[int64] {
	return &Number[int64]{
		name:     "longArg",
		floor:    math.MinInt64,
		read:     (*reader.StringReader).ReadLong,
		tooLow:   cmderr.LongTooLow,
		tooHigh:  cmderr.LongTooHigh,
		examples: integerExamples,
	}
}

// LongMin returns an int64 argument type with a lower bound
func LongMin(min int64) *Number[int64] { return Long().WithMin(min) }

// LongRange returns an int64 argument type bounded on both sides
func LongRange(min, max int64) *Number[int64] { return Long().WithMin(min).WithMax(max) }

// Float returns a float32 argument type
func Float() *Number[float32] {
	return &Number[float32]{
		name:     "float",
		floor:    -math.MaxFloat32,
		read:     (*reader.StringReader).ReadFloat,
		tooLow:   cmderr.FloatTooLow,
		tooHigh:  cmderr.FloatTooHigh,
		examples: floatingExamples,
	}
}

// FloatMin returns a float32 argument type with a lower bound
func FloatMin(min float32) *Number[float32] { return Float().WithMin(min) }

// FloatRange returns a float32 argument type bounded on both sides
func FloatRange(min, max float32) *Number[float32] { return Float().WithMin(min).WithMax(max) }

// Double returns a float64 argument type
func Double() *Number[float64] {
	return &Number[float64]{
		name:     "double",
		floor:    -math.MaxFloat64,
		read:     (*reader.StringReader).ReadDouble,
		tooLow:   cmderr.DoubleTooLow,
		tooHigh:  cmderr.DoubleTooHigh,
		examples: floatingExamples,
	}
}

// DoubleMin returns a float64 argument type with a lower bound
func DoubleMin(min float64) *Number[float64] { return Double().WithMin(min) }

// DoubleRange returns a float64 argument type bounded on both sides
func DoubleRange(min, max float64) *Number[float64] { return Double().WithMin(min).WithMax(max) }
