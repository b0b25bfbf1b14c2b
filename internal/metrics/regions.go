package metrics

import (
	"sort"

	"commerce-insights/internal/dataset"
)

type RegionRevenue struct {
	Region    string  `json:"region"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
	Lat       Scalar  `json:"lat"`
	Lng       Scalar  `json:"lng"`
}

// RevenueByRegion groups revenue by customer state, or by city once the
// filter already pins a state. Coordinates average the geolocation of
// each order's customer zip prefix; orders whose zip is not geolocated
// still count toward revenue.
func (e *Engine) RevenueByRegion(v *dataset.View) []RegionRevenue {
	byCity := v.Filter().State != ""
	ds := v.Dataset()

	type acc struct {
		lat, lng  []float64
		customers map[string]struct{}
	}
	index := make(map[string]int)
	var accs []acc
	var out []RegionRevenue
	for _, o := range v.Orders() {
		c := v.Customer(o)
		if c == nil {
			continue
		}
		region := c.State
		if byCity {
			region = c.City
		}
		i, ok := index[region]
		if !ok {
			i = len(out)
			index[region] = i
			out = append(out, RegionRevenue{Region: region})
			accs = append(accs, acc{customers: make(map[string]struct{})})
		}
		out[i].Orders++
		out[i].Revenue += v.Revenue(o)
		accs[i].customers[v.UniqueCustomerID(o)] = struct{}{}
		if g, found := ds.Geolocation(c.ZipPrefix); found {
			accs[i].lat = append(accs[i].lat, g.Lat)
			accs[i].lng = append(accs[i].lng, g.Lng)
		}
	}
	for i := range out {
		out[i].Customers = len(accs[i].customers)
		out[i].Lat = mean(accs[i].lat)
		out[i].Lng = mean(accs[i].lng)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Region < out[j].Region
	})
	return out
}
