package dashboard

import (
	"context"
	"sort"

	"commerce-insights/internal/dataset"
	"commerce-insights/internal/segmentation"
)

// PanelFunc computes one panel over a filtered view.
type PanelFunc func(ctx context.Context, s *Session, v *dataset.View) (interface{}, error)

// Registry maps page name to panel name to panel.
type Registry map[string]map[string]PanelFunc

type Page struct {
	Name   string   `json:"name"`
	Panels []string `json:"panels"`
}

// metric adapts an infallible metric to a PanelFunc.
func metric(fn func(s *Session, v *dataset.View) interface{}) PanelFunc {
	return func(ctx context.Context, s *Session, v *dataset.View) (interface{}, error) {
		return fn(s, v), nil
	}
}

func segments(ctx context.Context, s *Session, v *dataset.View) (interface{}, error) {
	return segmentation.Segment(v, s.segOpts)
}

// Pages returns the dashboard layout: business, customers, products,
// sales, geography, shipping and segmentation.
func Pages() Registry {
	overview := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.Overview(v) })
	aov := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.AOV(v) })
	repeat := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.RepeatPurchaseRate(v) })
	churn := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.ChurnRate(v) })
	returns := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.ReturnRate(v) })
	yearly := metric(func(s *Session, v *dataset.View) interface{} { return s.engine.YearlyRevenue(v) })

	return Registry{
		"business": {
			"overview":            overview,
			"aov":                 aov,
			"repeat_rate":         repeat,
			"churn":               churn,
			"return_rate":         returns,
			"yearly_revenue":      yearly,
			"status_distribution": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.StatusDistribution(v) }),
		},
		"customers": {
			"top_customers": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.TopCustomers(v) }),
			"new_customers": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.NewCustomersByYear(v) }),
			"churn":         churn,
			"repeat_rate":   repeat,
		},
		"products": {
			"category_ranking": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.CategoryRanking(v) }),
			"category_growth":  metric(func(s *Session, v *dataset.View) interface{} { return s.engine.CategoryGrowth(v) }),
			"category_returns": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.CategoryReturnRates(v) }),
			"top_sellers":      metric(func(s *Session, v *dataset.View) interface{} { return s.engine.TopSellers(v) }),
			"reviews":          metric(func(s *Session, v *dataset.View) interface{} { return s.engine.ReviewMetrics(v) }),
		},
		"sales": {
			"monthly_revenue":      metric(func(s *Session, v *dataset.View) interface{} { return s.engine.MonthlyRevenue(v) }),
			"daily_orders":         metric(func(s *Session, v *dataset.View) interface{} { return s.engine.DailyOrders(v) }),
			"yearly_revenue":       yearly,
			"revenue_contribution": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.RevenueContribution(v) }),
			"payments":             metric(func(s *Session, v *dataset.View) interface{} { return s.engine.PaymentBreakdown(v) }),
			"aov":                  aov,
		},
		"geography": {
			"revenue_by_region":  metric(func(s *Session, v *dataset.View) interface{} { return s.engine.RevenueByRegion(v) }),
			"shipping_by_region": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.ShippingByRegion(v) }),
		},
		"shipping": {
			"delivery_variance": metric(func(s *Session, v *dataset.View) interface{} { return s.engine.DeliveryVariance(v) }),
			"delivery_times":    metric(func(s *Session, v *dataset.View) interface{} { return s.engine.DeliveryTimes(v) }),
			"delivery_by_year":  metric(func(s *Session, v *dataset.View) interface{} { return s.engine.DeliveryByYear(v) }),
			"shipping_cost":     metric(func(s *Session, v *dataset.View) interface{} { return s.engine.ShippingCost(v) }),
		},
		"segmentation": {
			"segments": segments,
		},
	}
}

// Lookup fails with ErrUnknownPanel when page or panel is not registered.
func (r Registry) Lookup(page, panel string) (PanelFunc, error) {
	fn, ok := r[page][panel]
	if !ok {
		return nil, &UnknownPanelError{Page: page, Panel: panel}
	}
	return fn, nil
}

// Layout lists pages and their panels in name order.
func (r Registry) Layout() []Page {
	out := make([]Page, 0, len(r))
	for name, panels := range r {
		p := Page{Name: name, Panels: make([]string, 0, len(panels))}
		for panel := range panels {
			p.Panels = append(p.Panels, panel)
		}
		sort.Strings(p.Panels)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
