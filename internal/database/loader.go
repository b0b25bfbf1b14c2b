package database

import (
	"context"
	"fmt"

	"commerce-insights/internal/dataset"
)

func collect[T any](ctx context.Context, q Querier, table, query string, scan func(Rows, *T) error) ([]T, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var rec T
		if err := scan(rows, &rec); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, len(out)+1, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return out, nil
}

// loadSQL reads every table through q and validates the result.
func loadSQL(ctx context.Context, q Querier) (*dataset.Dataset, error) {
	var (
		t   dataset.Tables
		err error
	)

	if t.Customers, err = collect(ctx, q, "customers", selectCustomers, func(r Rows, c *dataset.Customer) error {
		return r.Scan(&c.ID, &c.UniqueID, &c.ZipPrefix, &c.City, &c.State)
	}); err != nil {
		return nil, err
	}
	if t.Orders, err = collect(ctx, q, "orders", selectOrders, func(r Rows, o *dataset.Order) error {
		return r.Scan(&o.ID, &o.CustomerID, &o.Status, &o.PurchasedAt, &o.ApprovedAt,
			&o.DeliveredCarrierAt, &o.DeliveredCustomerAt, &o.EstimatedDeliveryAt)
	}); err != nil {
		return nil, err
	}
	if t.Items, err = collect(ctx, q, "order_items", selectOrderItems, func(r Rows, it *dataset.OrderItem) error {
		return r.Scan(&it.OrderID, &it.Seq, &it.ProductID, &it.SellerID, &it.ShippingLimitAt, &it.Price, &it.Freight)
	}); err != nil {
		return nil, err
	}
	if t.Payments, err = collect(ctx, q, "payments", selectPayments, func(r Rows, p *dataset.Payment) error {
		return r.Scan(&p.OrderID, &p.Seq, &p.Type, &p.Installments, &p.Value)
	}); err != nil {
		return nil, err
	}
	if t.Reviews, err = collect(ctx, q, "reviews", selectReviews, func(r Rows, rv *dataset.Review) error {
		return r.Scan(&rv.ID, &rv.OrderID, &rv.Score, &rv.CreatedAt, &rv.AnsweredAt)
	}); err != nil {
		return nil, err
	}
	if t.Products, err = collect(ctx, q, "products", selectProducts, func(r Rows, p *dataset.Product) error {
		return r.Scan(&p.ID, &p.Category, &p.WeightG, &p.LengthCm, &p.HeightCm, &p.WidthCm)
	}); err != nil {
		return nil, err
	}
	if t.Sellers, err = collect(ctx, q, "sellers", selectSellers, func(r Rows, s *dataset.Seller) error {
		return r.Scan(&s.ID, &s.ZipPrefix, &s.City, &s.State)
	}); err != nil {
		return nil, err
	}
	if t.Geolocations, err = collect(ctx, q, "geolocation", selectGeolocation, func(r Rows, g *dataset.Geolocation) error {
		return r.Scan(&g.ZipPrefix, &g.Lat, &g.Lng, &g.City, &g.State)
	}); err != nil {
		return nil, err
	}

	return dataset.New(t)
}
