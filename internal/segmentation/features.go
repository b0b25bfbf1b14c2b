package segmentation

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"commerce-insights/internal/dataset"
)

// FeatureNames lists the clustering dimensions in vector order.
var FeatureNames = []string{"order_count", "total_spend", "avg_shipping_cost", "recency_days"}

type Features struct {
	OrderCount      float64 `json:"order_count"`
	TotalSpend      float64 `json:"total_spend"`
	AvgShippingCost float64 `json:"avg_shipping_cost"`
	RecencyDays     float64 `json:"recency_days"`
}

func (f Features) vector() []float64 {
	return []float64{f.OrderCount, f.TotalSpend, f.AvgShippingCost, f.RecencyDays}
}

func featuresOf(vec []float64) Features {
	return Features{OrderCount: vec[0], TotalSpend: vec[1], AvgShippingCost: vec[2], RecencyDays: vec[3]}
}

type Customer struct {
	ID       string   `json:"customer_unique_id"`
	Features Features `json:"features"`
}

// Extract builds one feature vector per unique customer in the view,
// ordered by customer id. Recency counts days from the customer's latest
// purchase to the latest purchase in the snapshot. Customers with no
// purchase timestamp have no recency and are reported as skipped.
func Extract(v *dataset.View) (customers []Customer, skipped int) {
	type acc struct {
		orders  int
		spend   float64
		freight []float64
		last    time.Time
		known   bool
	}
	byID := make(map[string]*acc)
	for _, o := range v.Orders() {
		id := v.UniqueCustomerID(o)
		a, ok := byID[id]
		if !ok {
			a = &acc{}
			byID[id] = a
		}
		a.orders++
		for _, it := range v.Items(o) {
			a.spend += it.Revenue()
			a.freight = append(a.freight, it.Freight)
		}
		if o.PurchasedAt != nil && (!a.known || o.PurchasedAt.After(a.last)) {
			a.last = *o.PurchasedAt
			a.known = true
		}
	}

	ref, hasRef := v.Reference()
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := byID[id]
		if !hasRef || !a.known {
			skipped++
			continue
		}
		shipping, err := stats.Mean(a.freight)
		if err != nil {
			shipping = 0
		}
		customers = append(customers, Customer{
			ID: id,
			Features: Features{
				OrderCount:      float64(a.orders),
				TotalSpend:      a.spend,
				AvgShippingCost: shipping,
				RecencyDays:     ref.Sub(a.last).Hours() / 24,
			},
		})
	}
	return customers, skipped
}
