package segmentation

import "github.com/montanaflynn/stats"

// Scaler standardizes each column to zero mean and unit population
// variance. Constant columns scale to zero.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func FitScaler(rows [][]float64) Scaler {
	if len(rows) == 0 {
		return Scaler{}
	}
	dims := len(rows[0])
	s := Scaler{Mean: make([]float64, dims), Std: make([]float64, dims)}
	col := make([]float64, len(rows))
	for j := 0; j < dims; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.Mean[j], _ = stats.Mean(col)
		s.Std[j], _ = stats.StandardDeviationPopulation(col)
	}
	return s
}

func (s Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		scaled := make([]float64, len(r))
		for j, x := range r {
			if s.Std[j] != 0 {
				scaled[j] = (x - s.Mean[j]) / s.Std[j]
			}
		}
		out[i] = scaled
	}
	return out
}
