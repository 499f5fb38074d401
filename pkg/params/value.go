// Package params encodes query parameters for the tabular data service and
// plans the HTTP requests needed to carry them, splitting oversized list
// parameters into batches.
package params

import (
	"strconv"
	"time"
)

// DateLayout is the wire format for date parameters (YYYYMMDD).
const DateLayout = "20060102"

// Value is a single query parameter value.
// The set of implementations is closed: Scalar, Date, RawDate and List.
type Value interface {
	isValue()
}

// Scalar is a literal value sent URL-encoded.
type Scalar string

// Date is a calendar date sent as YYYYMMDD.
type Date time.Time

// RawDate is a date-like string (e.g. "2024-01-31") sent with every '-' removed.
type RawDate string

// List is an ordered sequence of values sent comma-joined.
// A list holding a single empty string is sent as an empty value,
// the same as an empty list.
type List []string

func (Scalar) isValue()  {}
func (Date) isValue()    {}
func (RawDate) isValue() {}
func (List) isValue()    {}

// Int returns the Scalar form of an integer.
func Int(n int64) Scalar {
	return Scalar(strconv.FormatInt(n, 10))
}

// Float returns the Scalar form of a float, without trailing zeros.
func Float(f float64) Scalar {
	return Scalar(strconv.FormatFloat(f, 'f', -1, 64))
}

// Param is a named query parameter. A nil Value omits the parameter from the query.
type Param struct {
	Name  string
	Value Value
}

// P is shorthand for constructing a Param.
func P(name string, value Value) Param {
	return Param{Name: name, Value: value}
}
