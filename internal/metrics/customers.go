package metrics

import (
	"sort"
	"time"

	"commerce-insights/internal/dataset"
)

type Churn struct {
	Customers int `json:"customers"`
	Churned   int `json:"churned"`
	// Unknown counts customers whose orders in the view all lack a
	// purchase timestamp. They are left out of Rate.
	Unknown   int       `json:"unknown"`
	Rate      Scalar    `json:"rate"`
	Reference time.Time `json:"reference"`
	Threshold time.Time `json:"threshold"`
}

// ChurnRate is the share of unique customers whose latest purchase in the
// view falls strictly before the reference minus the churn window. The
// reference is the latest purchase in the whole snapshot, not wall-clock
// time, so a historical snapshot is not reported as fully churned.
func (e *Engine) ChurnRate(v *dataset.View) Churn {
	var c Churn
	ref, ok := v.Reference()
	if !ok {
		c.Rate = NoData
		c.Unknown = uniqueCustomers(v)
		return c
	}
	c.Reference = ref
	c.Threshold = ref.AddDate(0, -e.opts.ChurnWindowMonths, 0)

	last := lastPurchases(v)
	seen := make(map[string]struct{}, len(last))
	for _, o := range v.Orders() {
		id := v.UniqueCustomerID(o)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t, known := last[id]
		if !known {
			c.Unknown++
			continue
		}
		c.Customers++
		if t.Before(c.Threshold) {
			c.Churned++
		}
	}
	c.Rate = ratio(float64(c.Churned), float64(c.Customers))
	return c
}

// lastPurchases maps each unique customer to their latest known purchase
// within the view.
func lastPurchases(v *dataset.View) map[string]time.Time {
	last := make(map[string]time.Time)
	for _, o := range v.Orders() {
		if o.PurchasedAt == nil {
			continue
		}
		id := v.UniqueCustomerID(o)
		if t, ok := last[id]; !ok || o.PurchasedAt.After(t) {
			last[id] = *o.PurchasedAt
		}
	}
	return last
}

type CustomerValue struct {
	CustomerID string  `json:"customer_unique_id"`
	Orders     int     `json:"orders"`
	Spend      float64 `json:"spend"`
	AOV        Scalar  `json:"aov"`
	State      string  `json:"state"`
}

// TopCustomers ranks unique customers by lifetime spend within the view.
func (e *Engine) TopCustomers(v *dataset.View) []CustomerValue {
	index := make(map[string]int)
	var out []CustomerValue
	for _, o := range v.Orders() {
		id := v.UniqueCustomerID(o)
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			cv := CustomerValue{CustomerID: id}
			if c := v.Customer(o); c != nil {
				cv.State = c.State
			}
			out = append(out, cv)
		}
		out[i].Orders++
		out[i].Spend += v.Revenue(o)
	}
	for i := range out {
		out[i].AOV = ratio(out[i].Spend, float64(out[i].Orders))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spend != out[j].Spend {
			return out[i].Spend > out[j].Spend
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if len(out) > e.opts.TopN {
		out = out[:e.opts.TopN]
	}
	return out
}
