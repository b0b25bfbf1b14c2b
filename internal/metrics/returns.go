package metrics

import (
	"sort"

	"commerce-insights/internal/dataset"
)

type Returns struct {
	Orders   int      `json:"orders"`
	Returned int      `json:"returned"`
	Rate     Scalar   `json:"rate"`
	Statuses []string `json:"statuses"`
}

// ReturnRate estimates returns as the share of orders whose status is in
// the configured return set. The estimate is labelled with that set.
func (e *Engine) ReturnRate(v *dataset.View) Returns {
	r := Returns{Orders: v.Len(), Statuses: e.opts.ReturnStatuses}
	for _, o := range v.Orders() {
		if e.isReturned(o.Status) {
			r.Returned++
		}
	}
	r.Rate = ratio(float64(r.Returned), float64(r.Orders))
	return r
}

type CategoryReturns struct {
	Category string `json:"category"`
	Orders   int    `json:"orders"`
	Returned int    `json:"returned"`
	Rate     Scalar `json:"rate"`
}

// CategoryReturnRates counts each order once per distinct category among
// its items.
func (e *Engine) CategoryReturnRates(v *dataset.View) []CategoryReturns {
	index := make(map[string]int)
	var out []CategoryReturns
	ds := v.Dataset()
	for _, o := range v.Orders() {
		returned := e.isReturned(o.Status)
		seen := make(map[string]bool)
		for _, it := range v.Items(o) {
			cat := ds.Category(it.ProductID)
			if seen[cat] {
				continue
			}
			seen[cat] = true
			i, ok := index[cat]
			if !ok {
				i = len(out)
				index[cat] = i
				out = append(out, CategoryReturns{Category: cat})
			}
			out[i].Orders++
			if returned {
				out[i].Returned++
			}
		}
	}
	for i := range out {
		out[i].Rate = ratio(float64(out[i].Returned), float64(out[i].Orders))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate.Value != out[j].Rate.Value {
			return out[i].Rate.Value > out[j].Rate.Value
		}
		return out[i].Category < out[j].Category
	})
	return out
}
