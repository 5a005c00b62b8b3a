package study

import (
	"fmt"
	"math"
)

// DataTypes are the column types the package supports.
type DataTypes uint8

const (
	DTunknown DataTypes = 0 + iota
	DTfloat
	DTint
	DTstring
)

func (dt DataTypes) String() string {
	switch dt {
	case DTfloat:
		return "float"
	case DTint:
		return "int"
	case DTstring:
		return "string"
	}

	return "unknown"
}

// Missing is the missing-value marker for float columns. String columns use
// the empty string.
var Missing = math.NaN()

// IsMissing reports whether x is the float missing marker.
func IsMissing(x float64) bool {
	return math.IsNaN(x)
}

// Vector holds the data of one column.
type Vector struct {
	dt DataTypes

	data any
}

func NewVector(data any) (*Vector, error) {
	switch data.(type) {
	case []float64:
		return &Vector{dt: DTfloat, data: data}, nil
	case []int:
		return &Vector{dt: DTint, data: data}, nil
	case []string:
		return &Vector{dt: DTstring, data: data}, nil
	}

	return nil, fmt.Errorf("cannot make Vector from %T", data)
}

// MakeVector makes a length-n vector. Float vectors start as all-missing.
func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		x := make([]float64, n)
		for ind := 0; ind < n; ind++ {
			x[ind] = Missing
		}

		return &Vector{dt: dt, data: x}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) Len() int {
	switch x := v.data.(type) {
	case []float64:
		return len(x)
	case []int:
		return len(x)
	case []string:
		return len(x)
	}

	return 0
}

func (v *Vector) Data() any {
	return v.data
}

// AsFloat returns the underlying slice. A type mismatch is a programmer
// error, so it panics rather than returning an error.
func (v *Vector) AsFloat() []float64 {
	if v.dt != DTfloat {
		panic(fmt.Errorf("vector isn't %s", DTfloat))
	}

	return v.data.([]float64)
}

func (v *Vector) AsInt() []int {
	if v.dt != DTint {
		panic(fmt.Errorf("vector isn't %s", DTint))
	}

	return v.data.([]int)
}

func (v *Vector) AsString() []string {
	if v.dt != DTstring {
		panic(fmt.Errorf("vector isn't %s", DTstring))
	}

	return v.data.([]string)
}

func (v *Vector) Element(indx int) any {
	switch x := v.data.(type) {
	case []float64:
		return x[indx]
	case []int:
		return x[indx]
	case []string:
		return x[indx]
	}

	return nil
}

func (v *Vector) SetElement(val any, indx int) {
	switch x := v.data.(type) {
	case []float64:
		x[indx] = val.(float64)
	case []int:
		x[indx] = val.(int)
	case []string:
		x[indx] = val.(string)
	}
}

func (v *Vector) Copy() *Vector {
	switch x := v.data.(type) {
	case []float64:
		return &Vector{dt: v.dt, data: append([]float64(nil), x...)}
	case []int:
		return &Vector{dt: v.dt, data: append([]int(nil), x...)}
	case []string:
		return &Vector{dt: v.dt, data: append([]string(nil), x...)}
	}

	return nil
}

// Append extends the vector by the elements of add, which must have the same
// data type.
func (v *Vector) Append(add *Vector) error {
	if add.VectorType() != v.dt {
		return fmt.Errorf("cannot append %s vector to %s vector", add.VectorType(), v.dt)
	}

	switch x := v.data.(type) {
	case []float64:
		v.data = append(x, add.AsFloat()...)
	case []int:
		v.data = append(x, add.AsInt()...)
	case []string:
		v.data = append(x, add.AsString()...)
	}

	return nil
}

// Where returns the subset of v on which keep is true.
func (v *Vector) Where(keep []bool) *Vector {
	n := 0
	for ind := 0; ind < len(keep); ind++ {
		if keep[ind] {
			n++
		}
	}

	out := MakeVector(v.dt, n)
	at := 0
	for ind := 0; ind < v.Len(); ind++ {
		if keep[ind] {
			out.SetElement(v.Element(ind), at)
			at++
		}
	}

	return out
}

// Subset returns the elements of v at rows, in order.
func (v *Vector) Subset(rows []int) *Vector {
	out := MakeVector(v.dt, len(rows))
	for ind, r := range rows {
		out.SetElement(v.Element(r), ind)
	}

	return out
}

// missingElement is the fill value used when a join has no match.
func missingElement(dt DataTypes) any {
	switch dt {
	case DTfloat:
		return Missing
	case DTint:
		return 0
	case DTstring:
		return ""
	}

	return nil
}
