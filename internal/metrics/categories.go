package metrics

import (
	"sort"

	"commerce-insights/internal/dataset"
)

type CategorySales struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Units    int     `json:"units"`
}

// CategoryRanking sums item revenue and units per product category,
// highest revenue first. Products without a category rank as "unknown".
func (e *Engine) CategoryRanking(v *dataset.View) []CategorySales {
	ds := v.Dataset()
	index := make(map[string]int)
	var out []CategorySales
	for _, o := range v.Orders() {
		for _, it := range v.Items(o) {
			cat := ds.Category(it.ProductID)
			i, ok := index[cat]
			if !ok {
				i = len(out)
				index[cat] = i
				out = append(out, CategorySales{Category: cat})
			}
			out[i].Revenue += it.Revenue()
			out[i].Units++
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type CategoryYear struct {
	Year     string  `json:"year"`
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// CategoryGrowth sums item revenue per category per purchase year, years
// ascending and the highest revenue first within a year.
func (e *Engine) CategoryGrowth(v *dataset.View) []CategoryYear {
	ds := v.Dataset()
	index := make(map[[2]string]int)
	var out []CategoryYear
	for _, o := range v.Orders() {
		if o.PurchasedAt == nil {
			continue
		}
		year := o.PurchasedAt.UTC().Format("2006")
		for _, it := range v.Items(o) {
			key := [2]string{year, ds.Category(it.ProductID)}
			i, ok := index[key]
			if !ok {
				i = len(out)
				index[key] = i
				out = append(out, CategoryYear{Year: key[0], Category: key[1]})
			}
			out[i].Revenue += it.Revenue()
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type SellerSales struct {
	SellerID string  `json:"seller_id"`
	State    string  `json:"state"`
	Orders   int     `json:"orders"`
	Units    int     `json:"units"`
	Revenue  float64 `json:"revenue"`
}

func (e *Engine) TopSellers(v *dataset.View) []SellerSales {
	ds := v.Dataset()
	index := make(map[string]int)
	var out []SellerSales
	for _, o := range v.Orders() {
		counted := make(map[string]bool)
		for _, it := range v.Items(o) {
			i, ok := index[it.SellerID]
			if !ok {
				i = len(out)
				index[it.SellerID] = i
				s := SellerSales{SellerID: it.SellerID}
				if seller, found := ds.Seller(it.SellerID); found {
					s.State = seller.State
				}
				out = append(out, s)
			}
			if !counted[it.SellerID] {
				counted[it.SellerID] = true
				out[i].Orders++
			}
			out[i].Units++
			out[i].Revenue += it.Revenue()
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].SellerID < out[j].SellerID
	})
	if len(out) > e.opts.TopN {
		out = out[:e.opts.TopN]
	}
	return out
}
