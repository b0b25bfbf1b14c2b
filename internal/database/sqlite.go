package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"commerce-insights/internal/dataset"
)

// SQLiteDriver reads a local snapshot file (or shared in-memory database)
// through gorm, mapping columns with the records' gorm tags.
type SQLiteDriver struct {
	db *gorm.DB
}

func (sd *SQLiteDriver) Connect(ctx context.Context, dsn string) error {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return err
	}
	sd.db = db
	return nil
}

func (sd *SQLiteDriver) Close() error {
	if sd.db == nil {
		return nil
	}
	sqlDB, err := sd.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (sd *SQLiteDriver) Load(ctx context.Context) (*dataset.Dataset, error) {
	if sd.db == nil {
		return nil, errors.New("sqlite: not connected")
	}
	db := sd.db.WithContext(ctx)

	var t dataset.Tables
	steps := []struct {
		table string
		dest  interface{}
	}{
		{"customers", &t.Customers},
		{"orders", &t.Orders},
		{"order_items", &t.Items},
		{"payments", &t.Payments},
		{"reviews", &t.Reviews},
		{"products", &t.Products},
		{"sellers", &t.Sellers},
		{"geolocation", &t.Geolocations},
	}
	for _, s := range steps {
		if err := db.Table(s.table).Find(s.dest).Error; err != nil {
			return nil, fmt.Errorf("read %s: %w", s.table, err)
		}
	}

	return dataset.New(t)
}
