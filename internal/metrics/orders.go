package metrics

import (
	"sort"

	"commerce-insights/internal/dataset"
)

type Overview struct {
	Orders          int     `json:"orders"`
	Revenue         float64 `json:"revenue"`
	AOV             Scalar  `json:"aov"`
	Customers       int     `json:"customers"`
	AvgShippingCost Scalar  `json:"avg_shipping_cost"`
}

func (e *Engine) Overview(v *dataset.View) Overview {
	revenue := totalRevenue(v)
	return Overview{
		Orders:          v.Len(),
		Revenue:         revenue,
		AOV:             ratio(revenue, float64(v.Len())),
		Customers:       uniqueCustomers(v),
		AvgShippingCost: e.ShippingCost(v),
	}
}

// AOV is total item revenue over the number of distinct orders.
func (e *Engine) AOV(v *dataset.View) Scalar {
	return ratio(totalRevenue(v), float64(v.Len()))
}

// RepeatPurchaseRate is the mean number of orders per unique customer.
// Only customers with at least one order in the view are counted, so a
// valid rate is never below 1.
func (e *Engine) RepeatPurchaseRate(v *dataset.View) Scalar {
	return ratio(float64(v.Len()), float64(uniqueCustomers(v)))
}

// ShippingCost is the mean freight charged per item.
func (e *Engine) ShippingCost(v *dataset.View) Scalar {
	var freight []float64
	for _, o := range v.Orders() {
		for _, it := range v.Items(o) {
			freight = append(freight, it.Freight)
		}
	}
	return mean(freight)
}

type StatusCount struct {
	Status  string `json:"status"`
	Orders  int    `json:"orders"`
	Percent Scalar `json:"percent"`
}

func (e *Engine) StatusDistribution(v *dataset.View) []StatusCount {
	counts := make(map[string]int)
	for _, o := range v.Orders() {
		counts[o.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, StatusCount{Status: status, Orders: n, Percent: percent(float64(n), float64(v.Len()))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].Status < out[j].Status
	})
	return out
}

type PeriodRevenue struct {
	Period  string  `json:"period"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// MonthlyRevenue buckets revenue by purchase month (YYYY-MM). Orders
// without a purchase timestamp are left out.
func (e *Engine) MonthlyRevenue(v *dataset.View) []PeriodRevenue {
	return revenueBy(v, "2006-01")
}

// DailyOrders is order volume and revenue per purchase day (YYYY-MM-DD).
func (e *Engine) DailyOrders(v *dataset.View) []PeriodRevenue {
	return revenueBy(v, "2006-01-02")
}

type YearRevenue struct {
	PeriodRevenue
	// Change is the percent change against the previous listed year.
	Change Scalar `json:"change_percent"`
}

func (e *Engine) YearlyRevenue(v *dataset.View) []YearRevenue {
	periods := revenueBy(v, "2006")
	out := make([]YearRevenue, len(periods))
	for i, p := range periods {
		out[i] = YearRevenue{PeriodRevenue: p, Change: NoData}
		if i > 0 {
			prev := periods[i-1].Revenue
			out[i].Change = percent(p.Revenue-prev, prev)
		}
	}
	return out
}

func revenueBy(v *dataset.View, layout string) []PeriodRevenue {
	index := make(map[string]int)
	var out []PeriodRevenue
	for _, o := range v.Orders() {
		if o.PurchasedAt == nil {
			continue
		}
		key := o.PurchasedAt.UTC().Format(layout)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, PeriodRevenue{Period: key})
		}
		out[i].Orders++
		out[i].Revenue += v.Revenue(o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

type BasketRevenue struct {
	Items   int     `json:"items"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	Share   Scalar  `json:"share_percent"`
}

// RevenueContribution groups orders by how many items they hold, smallest
// basket first. Orders without items are left out.
func (e *Engine) RevenueContribution(v *dataset.View) []BasketRevenue {
	index := make(map[int]int)
	var out []BasketRevenue
	var total float64
	for _, o := range v.Orders() {
		n := len(v.Items(o))
		if n == 0 {
			continue
		}
		i, ok := index[n]
		if !ok {
			i = len(out)
			index[n] = i
			out = append(out, BasketRevenue{Items: n})
		}
		revenue := v.Revenue(o)
		out[i].Orders++
		out[i].Revenue += revenue
		total += revenue
	}
	for i := range out {
		out[i].Share = percent(out[i].Revenue, total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Items < out[j].Items })
	return out
}

type CohortYear struct {
	Year      string `json:"year"`
	Customers int    `json:"customers"`
}

// NewCustomersByYear counts unique customers by the year of their first
// purchase within the view.
func (e *Engine) NewCustomersByYear(v *dataset.View) []CohortYear {
	first := make(map[string]string)
	for _, o := range v.Orders() {
		if o.PurchasedAt == nil {
			continue
		}
		id := v.UniqueCustomerID(o)
		year := o.PurchasedAt.UTC().Format("2006")
		if cur, ok := first[id]; !ok || year < cur {
			first[id] = year
		}
	}
	counts := make(map[string]int)
	for _, year := range first {
		counts[year]++
	}
	out := make([]CohortYear, 0, len(counts))
	for year, n := range counts {
		out = append(out, CohortYear{Year: year, Customers: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func totalRevenue(v *dataset.View) float64 {
	var total float64
	for _, o := range v.Orders() {
		total += v.Revenue(o)
	}
	return total
}

func uniqueCustomers(v *dataset.View) int {
	seen := make(map[string]struct{})
	for _, o := range v.Orders() {
		seen[v.UniqueCustomerID(o)] = struct{}{}
	}
	return len(seen)
}
