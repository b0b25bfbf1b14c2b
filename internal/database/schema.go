package database

// Statements used by the SQL drivers. Columns are listed in the field
// order of the matching dataset record; nullable text is coalesced so it
// scans into plain strings.

const selectCustomers = `
	SELECT customer_id, customer_unique_id, customer_zip_code_prefix,
	       COALESCE(customer_city, ''), COALESCE(customer_state, '')
	FROM customers`

const selectOrders = `
	SELECT order_id, customer_id, COALESCE(order_status, ''),
	       order_purchase_timestamp, order_approved_at,
	       order_delivered_carrier_date, order_delivered_customer_date,
	       order_estimated_delivery_date
	FROM orders`

const selectOrderItems = `
	SELECT order_id, order_item_id, product_id, seller_id,
	       shipping_limit_date, price, freight_value
	FROM order_items`

const selectPayments = `
	SELECT order_id, payment_sequential, COALESCE(payment_type, ''),
	       COALESCE(payment_installments, 0), payment_value
	FROM payments`

const selectReviews = `
	SELECT review_id, order_id, review_score,
	       review_creation_date, review_answer_timestamp
	FROM reviews`

const selectProducts = `
	SELECT product_id,
	       COALESCE(product_category_name_english, product_category_name, ''),
	       product_weight_g, product_length_cm, product_height_cm, product_width_cm
	FROM products`

const selectSellers = `
	SELECT seller_id, seller_zip_code_prefix,
	       COALESCE(seller_city, ''), COALESCE(seller_state, '')
	FROM sellers`

const selectGeolocation = `
	SELECT geolocation_zip_code_prefix, geolocation_lat, geolocation_lng,
	       COALESCE(geolocation_city, ''), COALESCE(geolocation_state, '')
	FROM geolocation`

/*
Mongo document structure: one collection per table, named after it, with
the same field names as the SQL columns, e.g.

orders: {
  order_id: <string>,
  customer_id: <string>,
  order_status: <string>,
  order_purchase_timestamp: <date>,
  order_delivered_customer_date: <date|null>,
  ...
}
*/
