package dataset_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-insights/internal/dataset"
	"commerce-insights/internal/dataset/datasettest"
)

func TestNewNormalizesAndIndexes(t *testing.T) {
	ds := datasettest.Dataset(t)

	p, ok := ds.Product("p3")
	require.True(t, ok)
	assert.Equal(t, dataset.UnknownCategory, p.Category)
	assert.Equal(t, dataset.UnknownCategory, ds.Category("missing"))

	c, ok := ds.Customer("c4")
	require.True(t, ok)
	assert.Equal(t, "SP", c.State)

	assert.Len(t, ds.Items("o1"), 2)
	assert.Len(t, ds.Payments("o1"), 2)
	assert.Len(t, ds.Reviews("o3"), 1)
	assert.Empty(t, ds.Reviews("o4"))

	g, ok := ds.Geolocation(1000)
	require.True(t, ok)
	assert.Equal(t, -23.5, g.Lat, "first geolocation row for a zip wins")

	ref, ok := ds.MaxPurchase()
	require.True(t, ok)
	assert.Equal(t, *datasettest.Day(2018, 8, 1), ref)

	assert.Equal(t, 5, ds.Counts()["orders"])
}

func TestNewRejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dataset.Tables)
	}{
		{"item without order", func(tb *dataset.Tables) {
			tb.Items = append(tb.Items, dataset.OrderItem{OrderID: "ghost", Seq: 1})
		}},
		{"payment without order", func(tb *dataset.Tables) {
			tb.Payments = append(tb.Payments, dataset.Payment{OrderID: "ghost", Seq: 1})
		}},
		{"review without order", func(tb *dataset.Tables) {
			tb.Reviews = append(tb.Reviews, dataset.Review{ID: "rx", OrderID: "ghost", Score: 3})
		}},
		{"review score out of range", func(tb *dataset.Tables) {
			tb.Reviews[0].Score = 6
		}},
		{"order without customer", func(tb *dataset.Tables) {
			tb.Orders[0].CustomerID = "nobody"
		}},
		{"duplicate order", func(tb *dataset.Tables) {
			tb.Orders = append(tb.Orders, tb.Orders[0])
		}},
		{"customer without id", func(tb *dataset.Tables) {
			tb.Customers = append(tb.Customers, dataset.Customer{UniqueID: "u9"})
		}},
		{"negative price", func(tb *dataset.Tables) {
			tb.Items[0].Price = -1
		}},
		{"latitude out of range", func(tb *dataset.Tables) {
			tb.Geolocations[0].Lat = 123
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := datasettest.Tables()
			tt.mutate(&tables)
			_, err := dataset.New(tables)
			assert.ErrorIs(t, err, dataset.ErrInvalidDataset)
		})
	}
}

func TestNewNamesFieldProblems(t *testing.T) {
	tables := datasettest.Tables()
	tables.Reviews[0].Score = 0
	_, err := dataset.New(tables)
	require.ErrorIs(t, err, dataset.ErrInvalidDataset)
	assert.Contains(t, err.Error(), `review "r1"`)
	assert.Contains(t, err.Error(), "Score")
}

func TestNewCapsReportedProblems(t *testing.T) {
	tables := datasettest.Tables()
	for i := 0; i < 50; i++ {
		tables.Payments = append(tables.Payments, dataset.Payment{OrderID: "ghost", Seq: i})
	}
	_, err := dataset.New(tables)
	require.ErrorIs(t, err, dataset.ErrInvalidDataset)
	assert.Contains(t, err.Error(), "50 problems")
}

func TestEmptyDatasetHasNoReference(t *testing.T) {
	ds, err := dataset.New(dataset.Tables{})
	require.NoError(t, err)
	_, ok := ds.MaxPurchase()
	assert.False(t, ok)
	assert.Zero(t, ds.Select(dataset.Filter{}).Len())
}

func TestSelect(t *testing.T) {
	ds := datasettest.Dataset(t)

	tests := []struct {
		name   string
		filter dataset.Filter
		want   []string
	}{
		{"no filter", dataset.Filter{}, []string{"o1", "o2", "o3", "o4", "o5"}},
		{"state is case-insensitive", dataset.Filter{State: "sp"}, []string{"o1", "o2", "o4"}},
		{"city", dataset.Filter{City: "Rio de Janeiro"}, []string{"o3"}},
		{"date range inclusive", dataset.Filter{DateFrom: datasettest.Day(2018, 1, 1), DateTo: datasettest.Day(2018, 3, 1)}, []string{"o1", "o3"}},
		{"open ended from", dataset.Filter{DateFrom: datasettest.Day(2018, 7, 1)}, []string{"o2", "o4"}},
		{"statuses", dataset.Filter{Statuses: []string{"DELIVERED"}}, []string{"o1", "o2", "o5"}},
		{"nothing matches", dataset.Filter{State: "AC"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, o := range ds.Select(tt.filter).Orders() {
				got = append(got, o.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectDateToCoversWholeDay(t *testing.T) {
	tables := datasettest.Tables()
	late := time.Date(2018, 3, 1, 23, 59, 0, 0, time.UTC)
	tables.Orders[2].PurchasedAt = &late
	ds, err := dataset.New(tables)
	require.NoError(t, err)

	v := ds.Select(dataset.Filter{DateTo: datasettest.Day(2018, 3, 1), DateFrom: datasettest.Day(2018, 2, 1)})
	require.Equal(t, 1, v.Len())
	assert.Equal(t, "o3", v.Orders()[0].ID)
}

func TestSelectSkipsMissingPurchaseWhenDateBounded(t *testing.T) {
	tables := datasettest.Tables()
	tables.Orders[0].PurchasedAt = nil
	ds, err := dataset.New(tables)
	require.NoError(t, err)

	assert.Equal(t, 5, ds.Select(dataset.Filter{}).Len())
	assert.Equal(t, 4, ds.Select(dataset.Filter{DateFrom: datasettest.Day(2000, 1, 1)}).Len())
}

func TestViewJoins(t *testing.T) {
	v := datasettest.Dataset(t).Select(dataset.Filter{})
	o := v.Orders()[1]

	assert.Equal(t, "u1", v.UniqueCustomerID(o))
	assert.Equal(t, 120.0, v.Revenue(o))
	assert.Len(t, v.Payments(o), 1)
}

func TestParseFilter(t *testing.T) {
	f, err := dataset.ParseFilter("2018-01-01", "2018-06-30", " SP ", "", []string{"Delivered", " "})
	require.NoError(t, err)
	assert.Equal(t, *datasettest.Day(2018, 1, 1), *f.DateFrom)
	assert.Equal(t, "SP", f.State)
	assert.Equal(t, []string{"delivered"}, f.Statuses)

	_, err = dataset.ParseFilter("2018-13-01", "", "", "", nil)
	assert.Error(t, err)

	_, err = dataset.ParseFilter("2018-06-01", "2018-01-01", "", "", nil)
	assert.Error(t, err)
}

func TestFilterKey(t *testing.T) {
	a := dataset.Filter{State: "sp", Statuses: []string{"shipped", "delivered"}}
	b := dataset.Filter{State: "SP", Statuses: []string{"Delivered", "shipped"}}
	assert.Equal(t, a.Key(), b.Key())

	c := dataset.Filter{State: "SP", DateFrom: datasettest.Day(2018, 1, 1)}
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, dataset.Filter{State: "SP"}.Key(), dataset.Filter{City: "SP"}.Key())
}
