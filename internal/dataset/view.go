package dataset

import "time"

// View is the set of orders that pass a Filter, joined back to the
// snapshot. Orders keep dataset order, so repeated traversals add floats
// in the same sequence and produce bit-identical sums.
type View struct {
	ds     *Dataset
	filter Filter
	orders []*Order
}

func (ds *Dataset) Select(f Filter) *View {
	v := &View{ds: ds, filter: f}
	for i := range ds.tables.Orders {
		o := &ds.tables.Orders[i]
		c, _ := ds.Customer(o.CustomerID)
		if f.Match(o, c) {
			v.orders = append(v.orders, o)
		}
	}
	return v
}

func (v *View) Dataset() *Dataset { return v.ds }
func (v *View) Filter() Filter    { return v.filter }
func (v *View) Orders() []*Order  { return v.orders }
func (v *View) Len() int          { return len(v.orders) }

// Customer returns the customer who placed o.
func (v *View) Customer(o *Order) *Customer {
	c, _ := v.ds.Customer(o.CustomerID)
	return c
}

// UniqueCustomerID identifies the person behind o. The store issues a new
// customer_id per order, so repeat buyers are only visible through the
// unique id.
func (v *View) UniqueCustomerID(o *Order) string {
	if c := v.Customer(o); c != nil && c.UniqueID != "" {
		return c.UniqueID
	}
	return o.CustomerID
}

func (v *View) Items(o *Order) []*OrderItem  { return v.ds.Items(o.ID) }
func (v *View) Payments(o *Order) []*Payment { return v.ds.Payments(o.ID) }
func (v *View) Reviews(o *Order) []*Review   { return v.ds.Reviews(o.ID) }

// Revenue is the sum of price and freight over the order's items.
func (v *View) Revenue(o *Order) float64 {
	var total float64
	for _, it := range v.Items(o) {
		total += it.Revenue()
	}
	return total
}

// Reference is the instant inactivity is measured against.
func (v *View) Reference() (time.Time, bool) { return v.ds.MaxPurchase() }
