package store

// schema is applied statement by statement so it runs on both SQLite and
// PostgreSQL. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       BIGINT NOT NULL,
		category    TEXT NOT NULL,
		image_url   TEXT NOT NULL DEFAULT '',
		in_stock    BOOLEAN NOT NULL DEFAULT TRUE,
		featured    BOOLEAN NOT NULL DEFAULT FALSE,
		promo_label TEXT,
		variations  TEXT,
		created_at  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		product_id      TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity        INTEGER NOT NULL,
		unit_price      BIGINT NOT NULL,
		variation_sku   TEXT NOT NULL DEFAULT '',
		variation_label TEXT,
		variation_price BIGINT,
		created_at      BIGINT NOT NULL,
		UNIQUE (user_id, product_id, variation_sku)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		status           TEXT NOT NULL,
		subtotal         BIGINT NOT NULL,
		shipping_fee     BIGINT NOT NULL,
		total            BIGINT NOT NULL,
		shipping_address TEXT NOT NULL,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id              TEXT PRIMARY KEY,
		order_id        TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		line_no         INTEGER NOT NULL,
		product_id      TEXT NOT NULL,
		product_name    TEXT NOT NULL,
		quantity        INTEGER NOT NULL,
		unit_price      BIGINT NOT NULL,
		variation_label TEXT,
		variation_sku   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id     TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		phone       TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		city        TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT '',
		updated_at  BIGINT NOT NULL
	)`,
	// One row at most: the singleton key makes a second claim a unique violation.
	`CREATE TABLE IF NOT EXISTS admins (
		singleton  INTEGER PRIMARY KEY CHECK (singleton = 1),
		user_id    TEXT NOT NULL,
		claimed_at BIGINT NOT NULL
	)`,
}
