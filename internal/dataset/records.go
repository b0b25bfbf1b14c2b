package dataset

import "time"

// Record types mirror the eight tables of the store. Column names are
// carried in bson and gorm tags so every driver decodes into the same
// shapes; SQL drivers scan positionally in column order. Field-level
// constraints live in validate tags and are checked once by New.

type Customer struct {
	ID        string `bson:"customer_id" gorm:"column:customer_id;primaryKey" validate:"required"`
	UniqueID  string `bson:"customer_unique_id" gorm:"column:customer_unique_id"`
	ZipPrefix int    `bson:"customer_zip_code_prefix" gorm:"column:customer_zip_code_prefix"`
	City      string `bson:"customer_city" gorm:"column:customer_city"`
	State     string `bson:"customer_state" gorm:"column:customer_state"`
}

func (Customer) TableName() string { return "customers" }

type Order struct {
	ID                  string     `bson:"order_id" gorm:"column:order_id;primaryKey" validate:"required"`
	CustomerID          string     `bson:"customer_id" gorm:"column:customer_id" validate:"required"`
	Status              string     `bson:"order_status" gorm:"column:order_status"`
	PurchasedAt         *time.Time `bson:"order_purchase_timestamp" gorm:"column:order_purchase_timestamp"`
	ApprovedAt          *time.Time `bson:"order_approved_at" gorm:"column:order_approved_at"`
	DeliveredCarrierAt  *time.Time `bson:"order_delivered_carrier_date" gorm:"column:order_delivered_carrier_date"`
	DeliveredCustomerAt *time.Time `bson:"order_delivered_customer_date" gorm:"column:order_delivered_customer_date"`
	EstimatedDeliveryAt *time.Time `bson:"order_estimated_delivery_date" gorm:"column:order_estimated_delivery_date"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	OrderID         string     `bson:"order_id" gorm:"column:order_id" validate:"required"`
	Seq             int        `bson:"order_item_id" gorm:"column:order_item_id"`
	ProductID       string     `bson:"product_id" gorm:"column:product_id"`
	SellerID        string     `bson:"seller_id" gorm:"column:seller_id"`
	ShippingLimitAt *time.Time `bson:"shipping_limit_date" gorm:"column:shipping_limit_date"`
	Price           float64    `bson:"price" gorm:"column:price" validate:"min=0"`
	Freight         float64    `bson:"freight_value" gorm:"column:freight_value" validate:"min=0"`
}

func (OrderItem) TableName() string { return "order_items" }

// Revenue is what the buyer paid for the item including its freight.
func (i OrderItem) Revenue() float64 { return i.Price + i.Freight }

type Payment struct {
	OrderID      string  `bson:"order_id" gorm:"column:order_id" validate:"required"`
	Seq          int     `bson:"payment_sequential" gorm:"column:payment_sequential"`
	Type         string  `bson:"payment_type" gorm:"column:payment_type"`
	Installments int     `bson:"payment_installments" gorm:"column:payment_installments" validate:"min=0"`
	Value        float64 `bson:"payment_value" gorm:"column:payment_value" validate:"min=0"`
}

func (Payment) TableName() string { return "payments" }

type Review struct {
	ID         string     `bson:"review_id" gorm:"column:review_id" validate:"required"`
	OrderID    string     `bson:"order_id" gorm:"column:order_id" validate:"required"`
	Score      int        `bson:"review_score" gorm:"column:review_score" validate:"min=1,max=5"`
	CreatedAt  *time.Time `bson:"review_creation_date" gorm:"column:review_creation_date"`
	AnsweredAt *time.Time `bson:"review_answer_timestamp" gorm:"column:review_answer_timestamp"`
}

func (Review) TableName() string { return "reviews" }

type Product struct {
	ID       string   `bson:"product_id" gorm:"column:product_id;primaryKey" validate:"required"`
	Category string   `bson:"product_category_name_english" gorm:"column:product_category_name_english"`
	WeightG  *float64 `bson:"product_weight_g" gorm:"column:product_weight_g"`
	LengthCm *float64 `bson:"product_length_cm" gorm:"column:product_length_cm"`
	HeightCm *float64 `bson:"product_height_cm" gorm:"column:product_height_cm"`
	WidthCm  *float64 `bson:"product_width_cm" gorm:"column:product_width_cm"`
}

func (Product) TableName() string { return "products" }

type Seller struct {
	ID        string `bson:"seller_id" gorm:"column:seller_id;primaryKey" validate:"required"`
	ZipPrefix int    `bson:"seller_zip_code_prefix" gorm:"column:seller_zip_code_prefix"`
	City      string `bson:"seller_city" gorm:"column:seller_city"`
	State     string `bson:"seller_state" gorm:"column:seller_state"`
}

func (Seller) TableName() string { return "sellers" }

type Geolocation struct {
	ZipPrefix int     `bson:"geolocation_zip_code_prefix" gorm:"column:geolocation_zip_code_prefix"`
	Lat       float64 `bson:"geolocation_lat" gorm:"column:geolocation_lat" validate:"min=-90,max=90"`
	Lng       float64 `bson:"geolocation_lng" gorm:"column:geolocation_lng" validate:"min=-180,max=180"`
	City      string  `bson:"geolocation_city" gorm:"column:geolocation_city"`
	State     string  `bson:"geolocation_state" gorm:"column:geolocation_state"`
}

func (Geolocation) TableName() string { return "geolocation" }

// Tables is the raw content read from a data source, before validation.
type Tables struct {
	Customers    []Customer
	Orders       []Order
	Items        []OrderItem
	Payments     []Payment
	Reviews      []Review
	Products     []Product
	Sellers      []Seller
	Geolocations []Geolocation
}
