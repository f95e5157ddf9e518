// Package schematest provides an in-memory shop schema for tests.
package schematest

import "github.com/atlekbai/dynquery/internal/schema"

func cols(names ...string) []schema.Column {
	out := make([]schema.Column, len(names))
	for i, n := range names {
		out[i] = schema.Column{Name: n}
	}
	return out
}

// Tables returns a fresh copy of the shop tables:
//
//	users       (id, name, password, age)
//	orders      (id, user_id -> users.id, total)
//	products    (id, title)
//	order_lines (order_id -> orders.id, line, product_id -> products.id, qty)
//	shipments   (id, order_id, line, carrier), (order_id, line) -> order_lines
//	messages    (id, sender_id -> users.id, recipient_id -> users.id)
//	logs        (id, message)
//	events      (message), no key
func Tables() []*schema.Table {
	return []*schema.Table{
		schema.NewTable("users", cols("id", "name", "password", "age"), []string{"id"}, nil),
		schema.NewTable("orders", cols("id", "user_id", "total"), []string{"id"}, []schema.ForeignKey{
			{Name: "fk_orders_users", MasterTable: "users", MasterColumns: []string{"id"}, DetailTable: "orders", DetailColumns: []string{"user_id"}},
		}),
		schema.NewTable("products", cols("id", "title"), []string{"id"}, nil),
		schema.NewTable("order_lines", cols("order_id", "line", "product_id", "qty"), []string{"order_id", "line"}, []schema.ForeignKey{
			{Name: "fk_lines_orders", MasterTable: "orders", MasterColumns: []string{"id"}, DetailTable: "order_lines", DetailColumns: []string{"order_id"}},
			{Name: "fk_lines_products", MasterTable: "products", MasterColumns: []string{"id"}, DetailTable: "order_lines", DetailColumns: []string{"product_id"}},
		}),
		schema.NewTable("shipments", cols("id", "order_id", "line", "carrier"), []string{"id"}, []schema.ForeignKey{
			{Name: "fk_shipments_lines", MasterTable: "order_lines", MasterColumns: []string{"order_id", "line"}, DetailTable: "shipments", DetailColumns: []string{"order_id", "line"}},
		}),
		schema.NewTable("messages", cols("id", "sender_id", "recipient_id", "body"), []string{"id"}, []schema.ForeignKey{
			{Name: "fk_messages_sender", MasterTable: "users", MasterColumns: []string{"id"}, DetailTable: "messages", DetailColumns: []string{"sender_id"}},
			{Name: "fk_messages_recipient", MasterTable: "users", MasterColumns: []string{"id"}, DetailTable: "messages", DetailColumns: []string{"recipient_id"}},
		}),
		schema.NewTable("logs", cols("id", "message"), []string{"id"}, nil),
		schema.NewTable("events", cols("message"), nil, nil),
	}
}

// Cache returns the shop tables under dialect d.
func Cache(d schema.Dialect) *schema.Cache {
	return schema.NewCacheFromTables(d, Tables()...)
}

// YAML is the same schema as a schema file.
const YAML = `
dialect: sqlserver
tables:
  - name: users
    columns: [id, name, password, age]
    keys: [id]
  - name: orders
    columns: [id, user_id, total]
    keys: [id]
    foreign_keys:
      - name: fk_orders_users
        master_table: users
        master_columns: [id]
        detail_columns: [user_id]
  - name: products
    columns: [id, title]
    keys: [id]
  - name: order_lines
    columns: [order_id, line, product_id, qty]
    keys: [order_id, line]
    foreign_keys:
      - name: fk_lines_orders
        master_table: orders
        master_columns: [id]
        detail_columns: [order_id]
      - name: fk_lines_products
        master_table: products
        master_columns: [id]
        detail_columns: [product_id]
  - name: logs
    columns: [id, message]
    keys: [id]
`
