package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-insights/internal/dataset"
)

type fakeRows struct {
	data   [][]interface{}
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("column %d: cannot assign %s to %s", i, value.Type(), target.Type())
		}
		target.Set(value)
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

type fakeQuerier struct {
	tables map[string][][]interface{}
	failOn string
	opened []*fakeRows
}

func (q *fakeQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if query == q.failOn {
		return nil, errors.New("relation does not exist")
	}
	rows := &fakeRows{data: q.tables[query]}
	q.opened = append(q.opened, rows)
	return rows, nil
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var noTime *time.Time

func sampleQuerier() *fakeQuerier {
	weight := 350.0
	return &fakeQuerier{tables: map[string][][]interface{}{
		selectCustomers: {
			{"c1", "u1", 1000, "sao paulo", "SP"},
		},
		selectOrders: {
			{"o1", "c1", "delivered", ts("2018-01-01 10:00:00"), ts("2018-01-01 11:00:00"),
				ts("2018-01-03 09:00:00"), ts("2018-01-10 10:00:00"), ts("2018-01-20 00:00:00")},
			{"o2", "c1", "shipped", ts("2018-02-01 10:00:00"), noTime, noTime, noTime, ts("2018-02-20 00:00:00")},
		},
		selectOrderItems: {
			{"o1", 1, "p1", "s1", noTime, 99.9, 12.5},
		},
		selectPayments: {
			{"o1", 1, "credit_card", 2, 112.4},
		},
		selectReviews: {
			{"r1", "o1", 4, ts("2018-01-11 00:00:00"), noTime},
		},
		selectProducts: {
			{"p1", "", &weight, (*float64)(nil), (*float64)(nil), (*float64)(nil)},
		},
		selectSellers: {
			{"s1", 1000, "sao paulo", "sp"},
		},
		selectGeolocation: {
			{1000, -23.5, -46.6, "sao paulo", "SP"},
		},
	}}
}

func TestLoadSQL(t *testing.T) {
	q := sampleQuerier()
	ds, err := loadSQL(context.Background(), q)
	require.NoError(t, err)

	tables := ds.Tables()
	require.Len(t, tables.Orders, 2)
	assert.Nil(t, tables.Orders[1].DeliveredCustomerAt)
	assert.Equal(t, *ts("2018-01-10 10:00:00"), *tables.Orders[0].DeliveredCustomerAt)
	assert.Equal(t, 112.4, tables.Payments[0].Value)
	assert.Equal(t, dataset.UnknownCategory, tables.Products[0].Category)
	assert.Equal(t, 350.0, *tables.Products[0].WeightG)
	assert.Equal(t, "SP", tables.Sellers[0].State)

	require.Len(t, q.opened, 8)
	for _, rows := range q.opened {
		assert.True(t, rows.closed)
	}
}

func TestLoadSQLQueryError(t *testing.T) {
	q := sampleQuerier()
	q.failOn = selectPayments

	_, err := loadSQL(context.Background(), q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query payments")
}

func TestLoadSQLScanError(t *testing.T) {
	q := sampleQuerier()
	q.tables[selectCustomers] = [][]interface{}{{"c1", "u1", "not-a-zip", "sao paulo", "SP"}}

	_, err := loadSQL(context.Background(), q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan customers row 1")
}

func TestLoadSQLValidates(t *testing.T) {
	q := sampleQuerier()
	q.tables[selectPayments] = append(q.tables[selectPayments], []interface{}{"ghost", 1, "boleto", 1, 10.0})

	_, err := loadSQL(context.Background(), q)
	assert.ErrorIs(t, err, dataset.ErrInvalidDataset)
}

func TestNewDriver(t *testing.T) {
	for _, name := range []string{"postgres", "mysql", "mongo", "sqlite"} {
		d, err := NewDriver(name, "ecommerce")
		require.NoError(t, err, name)
		assert.NotNil(t, d)
	}

	_, err := NewDriver("oracle", "")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestLoadWithoutConnect(t *testing.T) {
	drivers := []Driver{&PostgresDriver{}, &MySQLDriver{}, &MongoDriver{}, &SQLiteDriver{}}
	for _, d := range drivers {
		_, err := d.Load(context.Background())
		assert.Error(t, err)
		assert.NoError(t, d.Close())
	}
}
