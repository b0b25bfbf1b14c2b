package metrics

import (
	"strconv"

	"github.com/montanaflynn/stats"
)

// Scalar is a metric value that may be absent, e.g. an average over an
// empty filtered set. Invalid scalars print as "no data" and marshal to
// JSON null.
type Scalar struct {
	Value float64
	Valid bool
}

// NoData is the result of a metric whose denominator is empty.
var NoData = Scalar{}

func Some(v float64) Scalar { return Scalar{Value: v, Valid: true} }

func (s Scalar) String() string {
	if !s.Valid {
		return "no data"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, s.Value, 'f', -1, 64), nil
}

func ratio(num, den float64) Scalar {
	if den == 0 {
		return NoData
	}
	return Some(num / den)
}

func percent(num, den float64) Scalar {
	if den == 0 {
		return NoData
	}
	return Some(num * 100 / den)
}

func mean(xs []float64) Scalar {
	m, err := stats.Mean(xs)
	if err != nil {
		return NoData
	}
	return Some(m)
}
