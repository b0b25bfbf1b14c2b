package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDataset is returned by New when the tables break a schema invariant.
var ErrInvalidDataset = errors.New("invalid dataset")

// UnknownCategory replaces a missing product category.
const UnknownCategory = "unknown"

const maxReportedProblems = 20

var validate = validator.New()

// Dataset is an immutable, validated snapshot of the store. Nothing in
// this package or its callers mutates it after New returns.
type Dataset struct {
	tables Tables

	customers map[string]int
	orders    map[string]int
	products  map[string]int
	sellers   map[string]int
	geo       map[int]int

	itemsByOrder    map[string][]int
	paymentsByOrder map[string][]int
	reviewsByOrder  map[string][]int

	maxPurchase time.Time
}

// New normalizes and validates t and indexes it for joins. It takes
// ownership of the slices in t.
func New(t Tables) (*Dataset, error) {
	normalize(&t)

	ds := &Dataset{
		tables:          t,
		customers:       make(map[string]int, len(t.Customers)),
		orders:          make(map[string]int, len(t.Orders)),
		products:        make(map[string]int, len(t.Products)),
		sellers:         make(map[string]int, len(t.Sellers)),
		geo:             make(map[int]int, len(t.Geolocations)),
		itemsByOrder:    make(map[string][]int, len(t.Orders)),
		paymentsByOrder: make(map[string][]int, len(t.Orders)),
		reviewsByOrder:  make(map[string][]int, len(t.Orders)),
	}

	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}
	valid := func(kind, id string, rec interface{}) bool {
		if err := validate.Struct(rec); err != nil {
			report("%s %q: %w", kind, id, err)
			return false
		}
		return true
	}

	for i, c := range t.Customers {
		if !valid("customer", c.ID, c) {
			continue
		}
		if _, dup := ds.customers[c.ID]; dup {
			report("duplicate customer %q", c.ID)
			continue
		}
		ds.customers[c.ID] = i
	}
	for i, p := range t.Products {
		if !valid("product", p.ID, p) {
			continue
		}
		if _, dup := ds.products[p.ID]; dup {
			report("duplicate product %q", p.ID)
			continue
		}
		ds.products[p.ID] = i
	}
	for i, s := range t.Sellers {
		if !valid("seller", s.ID, s) {
			continue
		}
		if _, dup := ds.sellers[s.ID]; dup {
			report("duplicate seller %q", s.ID)
			continue
		}
		ds.sellers[s.ID] = i
	}
	for i, g := range t.Geolocations {
		if !valid("geolocation", fmt.Sprint(g.ZipPrefix), g) {
			continue
		}
		// the geolocation table repeats zip prefixes; the first row wins
		if _, ok := ds.geo[g.ZipPrefix]; !ok {
			ds.geo[g.ZipPrefix] = i
		}
	}

	for i, o := range t.Orders {
		if !valid("order", o.ID, o) {
			continue
		}
		if _, dup := ds.orders[o.ID]; dup {
			report("duplicate order %q", o.ID)
			continue
		}
		ds.orders[o.ID] = i
		if _, ok := ds.customers[o.CustomerID]; !ok {
			report("order %q references missing customer %q", o.ID, o.CustomerID)
		}
		if o.PurchasedAt != nil && o.PurchasedAt.After(ds.maxPurchase) {
			ds.maxPurchase = *o.PurchasedAt
		}
	}

	for i, it := range t.Items {
		if !valid("order item", fmt.Sprintf("%s/%d", it.OrderID, it.Seq), it) {
			continue
		}
		if _, ok := ds.orders[it.OrderID]; !ok {
			report("order item %d references missing order %q", it.Seq, it.OrderID)
			continue
		}
		ds.itemsByOrder[it.OrderID] = append(ds.itemsByOrder[it.OrderID], i)
	}
	for i, p := range t.Payments {
		if !valid("payment", fmt.Sprintf("%s/%d", p.OrderID, p.Seq), p) {
			continue
		}
		if _, ok := ds.orders[p.OrderID]; !ok {
			report("payment %d references missing order %q", p.Seq, p.OrderID)
			continue
		}
		ds.paymentsByOrder[p.OrderID] = append(ds.paymentsByOrder[p.OrderID], i)
	}
	for i, r := range t.Reviews {
		if !valid("review", r.ID, r) {
			continue
		}
		if _, ok := ds.orders[r.OrderID]; !ok {
			report("review %q references missing order %q", r.ID, r.OrderID)
			continue
		}
		ds.reviewsByOrder[r.OrderID] = append(ds.reviewsByOrder[r.OrderID], i)
	}

	if len(problems) > 0 {
		total := len(problems)
		if total > maxReportedProblems {
			problems = problems[:maxReportedProblems]
		}
		return nil, fmt.Errorf("%w: %d problems: %w", ErrInvalidDataset, total, errors.Join(problems...))
	}
	return ds, nil
}

func normalize(t *Tables) {
	for i := range t.Customers {
		t.Customers[i].State = strings.ToUpper(strings.TrimSpace(t.Customers[i].State))
		t.Customers[i].City = strings.TrimSpace(t.Customers[i].City)
	}
	for i := range t.Sellers {
		t.Sellers[i].State = strings.ToUpper(strings.TrimSpace(t.Sellers[i].State))
	}
	for i := range t.Products {
		if strings.TrimSpace(t.Products[i].Category) == "" {
			t.Products[i].Category = UnknownCategory
		}
	}
	for i := range t.Orders {
		t.Orders[i].Status = strings.ToLower(strings.TrimSpace(t.Orders[i].Status))
	}
}

// Tables returns the validated content. Callers must treat it as read-only.
func (ds *Dataset) Tables() Tables { return ds.tables }

// MaxPurchase is the latest purchase timestamp in the whole snapshot. It
// stands in for "now" when measuring inactivity so results do not drift
// with the wall clock.
func (ds *Dataset) MaxPurchase() (time.Time, bool) {
	return ds.maxPurchase, !ds.maxPurchase.IsZero()
}

func (ds *Dataset) Customer(id string) (*Customer, bool) {
	i, ok := ds.customers[id]
	if !ok {
		return nil, false
	}
	return &ds.tables.Customers[i], true
}

func (ds *Dataset) Product(id string) (*Product, bool) {
	i, ok := ds.products[id]
	if !ok {
		return nil, false
	}
	return &ds.tables.Products[i], true
}

func (ds *Dataset) Seller(id string) (*Seller, bool) {
	i, ok := ds.sellers[id]
	if !ok {
		return nil, false
	}
	return &ds.tables.Sellers[i], true
}

func (ds *Dataset) Geolocation(zip int) (*Geolocation, bool) {
	i, ok := ds.geo[zip]
	if !ok {
		return nil, false
	}
	return &ds.tables.Geolocations[i], true
}

// Category returns the category of a product, UnknownCategory when the
// product is not in the catalog.
func (ds *Dataset) Category(productID string) string {
	if p, ok := ds.Product(productID); ok {
		return p.Category
	}
	return UnknownCategory
}

func (ds *Dataset) Items(orderID string) []*OrderItem {
	idx := ds.itemsByOrder[orderID]
	out := make([]*OrderItem, len(idx))
	for i, j := range idx {
		out[i] = &ds.tables.Items[j]
	}
	return out
}

func (ds *Dataset) Payments(orderID string) []*Payment {
	idx := ds.paymentsByOrder[orderID]
	out := make([]*Payment, len(idx))
	for i, j := range idx {
		out[i] = &ds.tables.Payments[j]
	}
	return out
}

func (ds *Dataset) Reviews(orderID string) []*Review {
	idx := ds.reviewsByOrder[orderID]
	out := make([]*Review, len(idx))
	for i, j := range idx {
		out[i] = &ds.tables.Reviews[j]
	}
	return out
}

// Counts reports the number of rows per table, for logging.
func (ds *Dataset) Counts() map[string]int {
	return map[string]int{
		"customers":   len(ds.tables.Customers),
		"orders":      len(ds.tables.Orders),
		"order_items": len(ds.tables.Items),
		"payments":    len(ds.tables.Payments),
		"reviews":     len(ds.tables.Reviews),
		"products":    len(ds.tables.Products),
		"sellers":     len(ds.tables.Sellers),
		"geolocation": len(ds.tables.Geolocations),
	}
}
