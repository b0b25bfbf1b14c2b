package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"commerce-insights/internal/dataset"
)

// Delivery times are recorded in minutes; ten years is far beyond any
// plausible shipment.
const maxDeliveryMinutes = 10 * 365 * 24 * 60

var deliveryQuantiles = []float64{50, 90, 95, 99}

type OrderDelivery struct {
	OrderID       string    `json:"order_id"`
	State         string    `json:"state"`
	City          string    `json:"city"`
	PurchasedAt   time.Time `json:"purchased_at"`
	ActualDays    float64   `json:"actual_days"`
	EstimatedDays float64   `json:"estimated_days"`
	// VarianceDays is actual minus estimated; negative means early.
	VarianceDays float64 `json:"variance_days"`
}

func (d OrderDelivery) Late() bool { return d.VarianceDays > 0 }

type DeliveryTimes struct {
	Orders []OrderDelivery `json:"orders"`
	// Undelivered orders have no customer delivery date.
	Undelivered int `json:"undelivered"`
	// Incomplete orders were delivered but lack a purchase or estimate
	// timestamp, or were delivered before they were placed.
	Incomplete int `json:"incomplete"`
}

// DeliveryTimes lists actual and estimated delivery per delivered order.
func (e *Engine) DeliveryTimes(v *dataset.View) DeliveryTimes {
	var dt DeliveryTimes
	for _, o := range v.Orders() {
		if o.DeliveredCustomerAt == nil {
			dt.Undelivered++
			continue
		}
		if o.PurchasedAt == nil || o.EstimatedDeliveryAt == nil {
			dt.Incomplete++
			continue
		}
		actual := days(*o.PurchasedAt, *o.DeliveredCustomerAt)
		if actual < 0 {
			dt.Incomplete++
			continue
		}
		estimated := days(*o.PurchasedAt, *o.EstimatedDeliveryAt)
		d := OrderDelivery{
			OrderID:       o.ID,
			PurchasedAt:   *o.PurchasedAt,
			ActualDays:    actual,
			EstimatedDays: estimated,
			VarianceDays:  actual - estimated,
		}
		if c := v.Customer(o); c != nil {
			d.State, d.City = c.State, c.City
		}
		dt.Orders = append(dt.Orders, d)
	}
	return dt
}

type Quantile struct {
	Percentile float64 `json:"percentile"`
	Days       float64 `json:"days"`
}

type VarianceBucket struct {
	// Days is the variance rounded down to whole days.
	Days   int `json:"days"`
	Orders int `json:"orders"`
}

type Delivery struct {
	Delivered     int              `json:"delivered"`
	Undelivered   int              `json:"undelivered"`
	Incomplete    int              `json:"incomplete"`
	MeanActual    Scalar           `json:"mean_actual_days"`
	MeanEstimated Scalar           `json:"mean_estimated_days"`
	MeanVariance  Scalar           `json:"mean_variance_days"`
	OnTime        int              `json:"on_time"`
	Late          int              `json:"late"`
	LateRate      Scalar           `json:"late_rate"`
	Quantiles     []Quantile       `json:"quantiles"`
	Distribution  []VarianceBucket `json:"distribution"`
}

// DeliveryVariance summarizes actual against estimated delivery. Means
// cover the same delivered population, so MeanVariance equals
// MeanActual minus MeanEstimated.
func (e *Engine) DeliveryVariance(v *dataset.View) Delivery {
	dt := e.DeliveryTimes(v)
	d := Delivery{
		Delivered:   len(dt.Orders),
		Undelivered: dt.Undelivered,
		Incomplete:  dt.Incomplete,
	}

	hist := hdrhistogram.New(1, maxDeliveryMinutes, 3)
	actual := make([]float64, 0, len(dt.Orders))
	estimated := make([]float64, 0, len(dt.Orders))
	variance := make([]float64, 0, len(dt.Orders))
	buckets := make(map[int]int)
	for _, o := range dt.Orders {
		actual = append(actual, o.ActualDays)
		estimated = append(estimated, o.EstimatedDays)
		variance = append(variance, o.VarianceDays)
		buckets[int(math.Floor(o.VarianceDays))]++
		if o.Late() {
			d.Late++
		} else {
			d.OnTime++
		}
		minutes := int64(math.Round(o.ActualDays * 24 * 60))
		if minutes > maxDeliveryMinutes {
			minutes = maxDeliveryMinutes
		}
		// minutes is clamped to the histogram range, so recording cannot fail
		_ = hist.RecordValue(minutes)
	}
	d.MeanActual = mean(actual)
	d.MeanEstimated = mean(estimated)
	d.MeanVariance = mean(variance)
	d.LateRate = ratio(float64(d.Late), float64(d.Delivered))

	if hist.TotalCount() > 0 {
		for _, q := range deliveryQuantiles {
			d.Quantiles = append(d.Quantiles, Quantile{
				Percentile: q,
				Days:       float64(hist.ValueAtQuantile(q)) / (24 * 60),
			})
		}
	}
	for day, n := range buckets {
		d.Distribution = append(d.Distribution, VarianceBucket{Days: day, Orders: n})
	}
	sort.Slice(d.Distribution, func(i, j int) bool { return d.Distribution[i].Days < d.Distribution[j].Days })
	return d
}

type RegionShipping struct {
	Region        string `json:"region"`
	Orders        int    `json:"orders"`
	MeanActual    Scalar `json:"mean_actual_days"`
	MeanEstimated Scalar `json:"mean_estimated_days"`
	MeanVariance  Scalar `json:"mean_variance_days"`
	AvgFreight    Scalar `json:"avg_freight"`
}

// ShippingByRegion groups delivered orders by customer state, or by city
// once the filter already pins a state, slowest region first.
func (e *Engine) ShippingByRegion(v *dataset.View) []RegionShipping {
	byCity := v.Filter().State != ""
	regionOf := func(state, city string) string {
		if byCity {
			return city
		}
		return state
	}

	type acc struct {
		actual, estimated, variance []float64
	}
	freight := make(map[string][]float64)
	for _, o := range v.Orders() {
		c := v.Customer(o)
		if c == nil {
			continue
		}
		region := regionOf(c.State, c.City)
		for _, it := range v.Items(o) {
			freight[region] = append(freight[region], it.Freight)
		}
	}

	index := make(map[string]int)
	var accs []acc
	var out []RegionShipping
	for _, o := range e.DeliveryTimes(v).Orders {
		region := regionOf(o.State, o.City)
		i, ok := index[region]
		if !ok {
			i = len(out)
			index[region] = i
			out = append(out, RegionShipping{Region: region})
			accs = append(accs, acc{})
		}
		out[i].Orders++
		accs[i].actual = append(accs[i].actual, o.ActualDays)
		accs[i].estimated = append(accs[i].estimated, o.EstimatedDays)
		accs[i].variance = append(accs[i].variance, o.VarianceDays)
	}
	for i := range out {
		out[i].MeanActual = mean(accs[i].actual)
		out[i].MeanEstimated = mean(accs[i].estimated)
		out[i].MeanVariance = mean(accs[i].variance)
		out[i].AvgFreight = mean(freight[out[i].Region])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanActual.Value != out[j].MeanActual.Value {
			return out[i].MeanActual.Value > out[j].MeanActual.Value
		}
		return out[i].Region < out[j].Region
	})
	return out
}

type YearDelivery struct {
	Year          string `json:"year"`
	Delivered     int    `json:"delivered"`
	MeanActual    Scalar `json:"mean_actual_days"`
	MeanEstimated Scalar `json:"mean_estimated_days"`
	MeanVariance  Scalar `json:"mean_variance_days"`
}

// DeliveryByYear averages delivery times per purchase year.
func (e *Engine) DeliveryByYear(v *dataset.View) []YearDelivery {
	type acc struct {
		actual, estimated, variance []float64
	}
	byYear := make(map[string]*acc)
	for _, o := range e.DeliveryTimes(v).Orders {
		year := o.PurchasedAt.UTC().Format("2006")
		a, ok := byYear[year]
		if !ok {
			a = &acc{}
			byYear[year] = a
		}
		a.actual = append(a.actual, o.ActualDays)
		a.estimated = append(a.estimated, o.EstimatedDays)
		a.variance = append(a.variance, o.VarianceDays)
	}
	out := make([]YearDelivery, 0, len(byYear))
	for year, a := range byYear {
		out = append(out, YearDelivery{
			Year:          year,
			Delivered:     len(a.actual),
			MeanActual:    mean(a.actual),
			MeanEstimated: mean(a.estimated),
			MeanVariance:  mean(a.variance),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
