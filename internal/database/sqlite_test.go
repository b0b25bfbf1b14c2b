package database_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"commerce-insights/internal/database"
	"commerce-insights/internal/dataset"
	"commerce-insights/internal/dataset/datasettest"
)

// seedSQLite creates the schema in a named shared in-memory database and
// fills it with the reference fixture. The seeding connection stays open
// until cleanup so the in-memory database outlives the driver under test.
func seedSQLite(t *testing.T) string {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&dataset.Customer{}, &dataset.Order{}, &dataset.OrderItem{}, &dataset.Payment{},
		&dataset.Review{}, &dataset.Product{}, &dataset.Seller{}, &dataset.Geolocation{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	tables := datasettest.Tables()
	for _, rows := range []interface{}{
		&tables.Customers, &tables.Orders, &tables.Items, &tables.Payments,
		&tables.Reviews, &tables.Products, &tables.Sellers, &tables.Geolocations,
	} {
		require.NoError(t, db.Create(rows).Error)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return dsn
}

func TestSQLiteDriverLoad(t *testing.T) {
	dsn := seedSQLite(t)

	ds, err := database.Open(context.Background(), "sqlite", dsn, "")
	require.NoError(t, err)

	want := datasettest.Dataset(t)
	assert.Equal(t, want.Counts(), ds.Counts())

	o := ds.Select(dataset.Filter{}).Orders()
	require.Len(t, o, 5)
	assert.Equal(t, "o1", o[0].ID)
	assert.True(t, o[0].DeliveredCustomerAt.Equal(*datasettest.Day(2018, 1, 10)))
	assert.Nil(t, o[2].DeliveredCustomerAt)

	ref, ok := ds.MaxPurchase()
	require.True(t, ok)
	assert.True(t, ref.Equal(*datasettest.Day(2018, 8, 1)))

	assert.Equal(t, dataset.UnknownCategory, ds.Category("p3"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), "cassandra", "", "")
	assert.ErrorIs(t, err, database.ErrUnsupportedDriver)
}
