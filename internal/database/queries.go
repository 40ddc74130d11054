package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (number, number_formatted, table_number, pax, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, name, quantity, status, supplemental, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	GetOrderByIDSQL = `
		SELECT id, number, number_formatted, table_number, pax, status, version,
			   created_at, updated_at, completed_at
		FROM orders WHERE id = $1`

	GetOrderByNumberSQL = `
		SELECT id, number, number_formatted, table_number, pax, status, version,
			   created_at, updated_at, completed_at
		FROM orders
		WHERE number = $1 OR number_formatted = $1
		ORDER BY id
		LIMIT 1`

	GetOrderItemsSQL = `
		SELECT id, order_id, name, quantity, status, inventory_deducted, supplemental, position
		FROM order_items
		WHERE order_id = $1
		ORDER BY supplemental, position, id`

	UpdateOrderItemSQL = `
		UPDATE order_items SET status = $1, inventory_deducted = $2
		WHERE id = $3`

	UpdateOrderVersionedSQL = `
		UPDATE orders SET status = $1, completed_at = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3 AND version = $4`

	ListKitchenOrdersSQL = `
		SELECT id, number, number_formatted, table_number, pax, status, version,
			   created_at, updated_at, completed_at
		FROM orders
		WHERE LOWER(status) IN ('pending-payment', 'in-the-kitchen')
		ORDER BY created_at ASC`

	GetNextOrderSequenceSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 'ORD_[0-9]{8}_([0-9]{3})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC`
)

// Menu queries
const (
	GetMenuItemByNameSQL = `
		SELECT id, name
		FROM menu_items
		WHERE name = $1
		ORDER BY id
		LIMIT 1`

	GetMenuIngredientsSQL = `
		SELECT ingredient_name, quantity_per_unit, unit
		FROM menu_ingredients
		WHERE menu_item_id = $1
		ORDER BY position, id`
)

// Inventory queries
const (
	GetInventoryByNameSQL = `
		SELECT id, name, quantity, unit, version, updated_at
		FROM inventory
		WHERE name = $1
		ORDER BY id
		LIMIT 1`

	UpdateInventoryVersionedSQL = `
		UPDATE inventory SET quantity = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3`
)
