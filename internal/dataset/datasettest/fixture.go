// Package datasettest builds small, hand-checked snapshots for tests.
package datasettest

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"commerce-insights/internal/dataset"
)

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Tables is the reference fixture. Its totals, worked out by hand:
//
//	orders 5, unique customers 4, revenue 600, AOV 120, repeat rate 1.25
//	churned 1 of 4 (u4, last order 2017-12-01 vs reference 2018-08-01)
//	canceled 1 of 5; payments boleto 340, credit_card 195, voucher 65
//	categories unknown 255, electronics 230, toys 115
//	delivered 3 (actual 9/14/4 days, estimated 19/10/19), undelivered 2
//	reviews scores 5,1,2,5; answered after 1, 3 and 2 days
func Tables() dataset.Tables {
	return dataset.Tables{
		Customers: []dataset.Customer{
			{ID: "c1", UniqueID: "u1", ZipPrefix: 1000, City: "sao paulo", State: "SP"},
			{ID: "c2", UniqueID: "u1", ZipPrefix: 1000, City: "sao paulo", State: "SP"},
			{ID: "c3", UniqueID: "u2", ZipPrefix: 2000, City: "rio de janeiro", State: "RJ"},
			{ID: "c4", UniqueID: "u3", ZipPrefix: 1300, City: "campinas", State: "sp"},
			{ID: "c5", UniqueID: "u4", ZipPrefix: 3000, City: "belo horizonte", State: "MG"},
		},
		Orders: []dataset.Order{
			{ID: "o1", CustomerID: "c1", Status: "delivered", PurchasedAt: Day(2018, 1, 1),
				DeliveredCustomerAt: Day(2018, 1, 10), EstimatedDeliveryAt: Day(2018, 1, 20)},
			{ID: "o2", CustomerID: "c2", Status: "delivered", PurchasedAt: Day(2018, 8, 1),
				DeliveredCustomerAt: Day(2018, 8, 15), EstimatedDeliveryAt: Day(2018, 8, 11)},
			{ID: "o3", CustomerID: "c3", Status: "canceled", PurchasedAt: Day(2018, 3, 1),
				EstimatedDeliveryAt: Day(2018, 3, 21)},
			{ID: "o4", CustomerID: "c4", Status: "shipped", PurchasedAt: Day(2018, 7, 15),
				EstimatedDeliveryAt: Day(2018, 8, 1)},
			{ID: "o5", CustomerID: "c5", Status: "Delivered", PurchasedAt: Day(2017, 12, 1),
				DeliveredCustomerAt: Day(2017, 12, 5), EstimatedDeliveryAt: Day(2017, 12, 20)},
		},
		Items: []dataset.OrderItem{
			{OrderID: "o1", Seq: 1, ProductID: "p1", SellerID: "s1", Price: 100, Freight: 10},
			{OrderID: "o1", Seq: 2, ProductID: "p2", SellerID: "s1", Price: 50, Freight: 5},
			{OrderID: "o2", Seq: 1, ProductID: "p1", SellerID: "s2", Price: 100, Freight: 20},
			{OrderID: "o3", Seq: 1, ProductID: "p3", SellerID: "s2", Price: 30, Freight: 5},
			{OrderID: "o4", Seq: 1, ProductID: "p2", SellerID: "s1", Price: 50, Freight: 10},
			{OrderID: "o5", Seq: 1, ProductID: "p3", SellerID: "s2", Price: 200, Freight: 20},
		},
		Payments: []dataset.Payment{
			{OrderID: "o1", Seq: 1, Type: "credit_card", Installments: 3, Value: 100},
			{OrderID: "o1", Seq: 2, Type: "voucher", Installments: 1, Value: 65},
			{OrderID: "o2", Seq: 1, Type: "boleto", Installments: 1, Value: 120},
			{OrderID: "o3", Seq: 1, Type: "credit_card", Installments: 1, Value: 35},
			{OrderID: "o4", Seq: 1, Type: "credit_card", Installments: 2, Value: 60},
			{OrderID: "o5", Seq: 1, Type: "boleto", Installments: 1, Value: 220},
		},
		Reviews: []dataset.Review{
			{ID: "r1", OrderID: "o1", Score: 5, CreatedAt: Day(2018, 1, 11), AnsweredAt: Day(2018, 1, 12)},
			{ID: "r2", OrderID: "o2", Score: 1, CreatedAt: Day(2018, 8, 16), AnsweredAt: Day(2018, 8, 19)},
			{ID: "r3", OrderID: "o3", Score: 2, CreatedAt: Day(2018, 3, 22)},
			{ID: "r4", OrderID: "o5", Score: 5, CreatedAt: Day(2017, 12, 6), AnsweredAt: Day(2017, 12, 8)},
		},
		Products: []dataset.Product{
			{ID: "p1", Category: "electronics"},
			{ID: "p2", Category: "toys"},
			{ID: "p3", Category: ""},
		},
		Sellers: []dataset.Seller{
			{ID: "s1", ZipPrefix: 1000, City: "sao paulo", State: "SP"},
			{ID: "s2", ZipPrefix: 2000, City: "rio de janeiro", State: "RJ"},
		},
		Geolocations: []dataset.Geolocation{
			{ZipPrefix: 1000, Lat: -23.5, Lng: -46.6, City: "sao paulo", State: "SP"},
			{ZipPrefix: 1000, Lat: -20, Lng: -40, City: "sao paulo", State: "SP"},
			{ZipPrefix: 1300, Lat: -22.9, Lng: -47.1, City: "campinas", State: "SP"},
			{ZipPrefix: 2000, Lat: -22.9, Lng: -43.2, City: "rio de janeiro", State: "RJ"},
			{ZipPrefix: 3000, Lat: -19.9, Lng: -43.9, City: "belo horizonte", State: "MG"},
		},
	}
}

// Dataset returns the reference fixture as a validated snapshot.
func Dataset(tb testing.TB) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.New(Tables())
	if err != nil {
		tb.Fatalf("fixture dataset: %v", err)
	}
	return ds
}

// Random builds a synthetic snapshot with n customers, for benchmarks
// and property checks. The same seed yields the same snapshot.
func Random(tb testing.TB, n int, seed int64) *dataset.Dataset {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	states := []string{"SP", "RJ", "MG", "RS", "PR"}
	statuses := []string{"delivered", "delivered", "delivered", "shipped", "canceled"}
	payTypes := []string{"credit_card", "boleto", "voucher", "debit_card"}
	categories := []string{"bed_bath_table", "health_beauty", "sports_leisure", "computers_accessories", ""}
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

	var t dataset.Tables
	for i := range categories {
		t.Products = append(t.Products, dataset.Product{ID: fmt.Sprintf("p%d", i), Category: categories[i]})
	}
	for i := 0; i < 10; i++ {
		t.Sellers = append(t.Sellers, dataset.Seller{ID: fmt.Sprintf("s%d", i), ZipPrefix: 1000 + i, State: states[i%len(states)]})
	}
	for i := range states {
		t.Geolocations = append(t.Geolocations, dataset.Geolocation{
			ZipPrefix: 1000 + i, Lat: -20 - rng.Float64()*5, Lng: -40 - rng.Float64()*10, State: states[i],
		})
	}

	order := 0
	for c := 0; c < n; c++ {
		unique := fmt.Sprintf("u%d", c)
		orders := 1 + rng.Intn(3)
		for k := 0; k < orders; k++ {
			custID := fmt.Sprintf("c%d", order)
			state := states[c%len(states)]
			t.Customers = append(t.Customers, dataset.Customer{
				ID: custID, UniqueID: unique, ZipPrefix: 1000 + c%len(states), City: "city" + state, State: state,
			})

			purchased := start.Add(time.Duration(rng.Intn(600*24)) * time.Hour)
			estimated := purchased.Add(time.Duration(10+rng.Intn(20)) * 24 * time.Hour)
			o := dataset.Order{
				ID: fmt.Sprintf("o%d", order), CustomerID: custID,
				Status:      statuses[rng.Intn(len(statuses))],
				PurchasedAt: &purchased, EstimatedDeliveryAt: &estimated,
			}
			if o.Status == "delivered" {
				delivered := purchased.Add(time.Duration(2+rng.Intn(30)) * 24 * time.Hour)
				o.DeliveredCustomerAt = &delivered
			}
			t.Orders = append(t.Orders, o)

			var total float64
			items := 1 + rng.Intn(3)
			for it := 1; it <= items; it++ {
				item := dataset.OrderItem{
					OrderID: o.ID, Seq: it,
					ProductID: fmt.Sprintf("p%d", rng.Intn(len(categories))),
					SellerID:  fmt.Sprintf("s%d", rng.Intn(10)),
					Price:     float64(10 + rng.Intn(500)),
					Freight:   float64(5 + rng.Intn(40)),
				}
				total += item.Revenue()
				t.Items = append(t.Items, item)
			}
			t.Payments = append(t.Payments, dataset.Payment{
				OrderID: o.ID, Seq: 1, Type: payTypes[rng.Intn(len(payTypes))], Installments: 1, Value: total,
			})
			created := purchased.Add(20 * 24 * time.Hour)
			answered := created.Add(time.Duration(1+rng.Intn(96)) * time.Hour)
			t.Reviews = append(t.Reviews, dataset.Review{
				ID: "r" + o.ID, OrderID: o.ID, Score: 1 + rng.Intn(5), CreatedAt: &created, AnsweredAt: &answered,
			})
			order++
		}
	}

	ds, err := dataset.New(t)
	if err != nil {
		tb.Fatalf("random dataset: %v", err)
	}
	return ds
}
