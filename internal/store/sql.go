package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQL is the relational store.
type SQL struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Open connects to the database, pings it and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQL, error) {
	var ph squirrel.PlaceholderFormat
	switch driver {
	case DriverPostgres:
		ph = squirrel.Dollar
	case DriverSQLite:
		ph = squirrel.Question
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases and writes consistent.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Cascades need foreign keys on; the single connection keeps the setting.
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling sqlite foreign keys: %w", err)
		}
	}
	s := &SQL{db: db, sq: squirrel.StatementBuilder.PlaceholderFormat(ph)}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables and indexes.
func (s *SQL) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the connection pool.
func (s *SQL) Close() error { return s.db.Close() }

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	if rowsAffected != 1 {
		return fmt.Errorf("statement affected %d rows, but expected exactly 1", rowsAffected)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// --- products

var productColumns = []string{
	"id", "name", "description", "price", "category", "image_url",
	"in_stock", "featured", "promo_label", "variations", "created_at",
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}

type productRow struct {
	p       model.Product
	promo   sql.NullString
	vars    sql.NullString
	created int64
}

func (r *productRow) dest() []any {
	return []any{&r.p.ID, &r.p.Name, &r.p.Description, &r.p.Price, &r.p.Category, &r.p.ImageURL,
		&r.p.InStock, &r.p.Featured, &r.promo, &r.vars, &r.created}
}

func (r *productRow) product() model.Product {
	p := r.p
	if r.promo.Valid {
		p.PromoLabel = strp(r.promo.String)
	}
	if r.vars.Valid {
		p.Variations = json.RawMessage(r.vars.String)
	}
	p.CreatedAt = time.UnixMilli(r.created).UTC()
	return p
}

func productValues(p model.Product) map[string]any {
	var promo sql.NullString
	if p.PromoLabel != nil {
		promo = sql.NullString{String: *p.PromoLabel, Valid: true}
	}
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"image_url":   p.ImageURL,
		"in_stock":    p.InStock,
		"featured":    p.Featured,
		"promo_label": promo,
		"variations":  nullString(string(p.Variations)),
	}
}

// ListProducts returns products matching f, newest first.
func (s *SQL) ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	q := s.sq.Select(productColumns...).From("products").OrderBy("created_at DESC", "id")
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.FeaturedOnly {
		q = q.Where(squirrel.Eq{"featured": true})
	}
	if f.InStockOnly {
		q = q.Where(squirrel.Eq{"in_stock": true})
	}
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		var r productRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, r.product())
	}
	return out, rows.Err()
}

// GetProduct returns one product or model.ErrNotFound.
func (s *SQL) GetProduct(ctx context.Context, id string) (model.Product, error) {
	var r productRow
	err := s.sq.Select(productColumns...).From("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, model.ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("selecting product: %w", err)
	}
	return r.product(), nil
}

// InsertProduct stores a new product.
func (s *SQL) InsertProduct(ctx context.Context, p model.Product) error {
	values := productValues(p)
	values["id"] = p.ID
	values["created_at"] = p.CreatedAt.UnixMilli()
	_, err := s.sq.Insert("products").
		SetMap(values).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// UpdateProduct replaces the editable fields of p.
func (s *SQL) UpdateProduct(ctx context.Context, p model.Product) error {
	return expectOne(s.sq.Update("products").
		SetMap(productValues(p)).
		Where(squirrel.Eq{"id": p.ID}).
		RunWith(s.db).
		ExecContext(ctx))
}

// DeleteProduct removes a product and, through the foreign key, its cart lines.
func (s *SQL) DeleteProduct(ctx context.Context, id string) error {
	return expectOne(s.sq.Delete("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx))
}

// --- cart

var cartColumns = []string{
	"id", "user_id", "product_id", "quantity", "unit_price",
	"variation_sku", "variation_label", "variation_price", "created_at",
}

type cartRow struct {
	l       model.CartLine
	sku     string
	label   sql.NullString
	price   sql.NullInt64
	created int64
	prod    productRow
}

func (r *cartRow) dest() []any {
	d := []any{&r.l.ID, &r.l.UserID, &r.l.ProductID, &r.l.Quantity, &r.l.UnitPrice,
		&r.sku, &r.label, &r.price, &r.created}
	return append(d, r.prod.dest()...)
}

func (r *cartRow) line() model.CartLine {
	l := r.l
	if r.sku != "" {
		l.VariationSKU = strp(r.sku)
	}
	if r.label.Valid {
		l.VariationLabel = strp(r.label.String)
	}
	if r.price.Valid {
		v := r.price.Int64
		l.VariationPrice = &v
	}
	l.CreatedAt = time.UnixMilli(r.created).UTC()
	p := r.prod.product()
	l.Product = &p
	return l
}

func (s *SQL) cartSelect() squirrel.SelectBuilder {
	cols := append(prefixed("c", cartColumns), prefixed("p", productColumns)...)
	return s.sq.Select(cols...).
		From("cart_lines c").
		Join("products p ON p.id = c.product_id")
}

// UpsertCartLine inserts line, or adds its quantity to the existing line with
// the same (user, product, variation sku). The stored line is returned.
func (s *SQL) UpsertCartLine(ctx context.Context, line model.CartLine) (model.CartLine, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.CartLine{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = s.sq.Insert("cart_lines").
		SetMap(map[string]any{
			"id":              line.ID,
			"user_id":         line.UserID,
			"product_id":      line.ProductID,
			"quantity":        line.Quantity,
			"unit_price":      line.UnitPrice,
			"variation_sku":   line.SKUKey(),
			"variation_label": line.VariationLabel,
			"variation_price": line.VariationPrice,
			"created_at":      line.CreatedAt.UnixMilli(),
		}).
		Suffix("ON CONFLICT (user_id, product_id, variation_sku) DO UPDATE SET quantity = cart_lines.quantity + excluded.quantity").
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return model.CartLine{}, fmt.Errorf("upserting cart line: %w", err)
	}

	var r cartRow
	err = s.cartSelect().
		Where(squirrel.Eq{"c.user_id": line.UserID, "c.product_id": line.ProductID, "c.variation_sku": line.SKUKey()}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(r.dest()...)
	if err != nil {
		return model.CartLine{}, fmt.Errorf("reading back cart line: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.CartLine{}, fmt.Errorf("committing cart line: %w", err)
	}
	return r.line(), nil
}

// ListCartLines returns the user's lines with their products, oldest first.
func (s *SQL) ListCartLines(ctx context.Context, userID string) ([]model.CartLine, error) {
	rows, err := s.cartSelect().
		Where(squirrel.Eq{"c.user_id": userID}).
		OrderBy("c.created_at", "c.id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting cart lines: %w", err)
	}
	defer rows.Close()
	out := []model.CartLine{}
	for rows.Next() {
		var r cartRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		out = append(out, r.line())
	}
	return out, rows.Err()
}

// SetCartLineQuantity overwrites the quantity of one of the user's lines.
func (s *SQL) SetCartLineQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	return expectOne(s.sq.Update("cart_lines").
		Set("quantity", quantity).
		Where(squirrel.Eq{"id": lineID, "user_id": userID}).
		RunWith(s.db).
		ExecContext(ctx))
}

// DeleteCartLine removes one of the user's lines.
func (s *SQL) DeleteCartLine(ctx context.Context, userID, lineID string) error {
	return expectOne(s.sq.Delete("cart_lines").
		Where(squirrel.Eq{"id": lineID, "user_id": userID}).
		RunWith(s.db).
		ExecContext(ctx))
}

// DeleteCartLines removes every line the user owns.
func (s *SQL) DeleteCartLines(ctx context.Context, userID string) error {
	_, err := s.sq.Delete("cart_lines").
		Where(squirrel.Eq{"user_id": userID}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("deleting cart lines: %w", err)
	}
	return nil
}

// --- orders

var orderColumns = []string{
	"id", "user_id", "status", "subtotal", "shipping_fee", "total", "shipping_address", "created_at",
}

var orderItemColumns = []string{
	"id", "order_id", "product_id", "product_name", "quantity", "unit_price", "variation_label", "variation_sku",
}

// CreateOrder writes the order and all of its items in one transaction.
func (s *SQL) CreateOrder(ctx context.Context, o model.Order) error {
	addr, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("encoding address: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = s.sq.Insert("orders").
		SetMap(map[string]any{
			"id":               o.ID,
			"user_id":          o.UserID,
			"status":           string(o.Status),
			"subtotal":         o.Subtotal,
			"shipping_fee":     o.ShippingFee,
			"total":            o.Total,
			"shipping_address": string(addr),
			"created_at":       o.CreatedAt.UnixMilli(),
		}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	for i, it := range o.Items {
		_, err = s.sq.Insert("order_items").
			SetMap(map[string]any{
				"id":              it.ID,
				"order_id":        o.ID,
				"line_no":         i,
				"product_id":      it.ProductID,
				"product_name":    it.ProductName,
				"quantity":        it.Quantity,
				"unit_price":      it.UnitPrice,
				"variation_label": it.VariationLabel,
				"variation_sku":   it.VariationSKU,
			}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("inserting order item %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

func scanOrder(sc rowScanner) (model.Order, error) {
	var (
		o       model.Order
		status  string
		addr    string
		created int64
	)
	if err := sc.Scan(&o.ID, &o.UserID, &status, &o.Subtotal, &o.ShippingFee, &o.Total, &addr, &created); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	if err := json.Unmarshal([]byte(addr), &o.Address); err != nil {
		return model.Order{}, fmt.Errorf("decoding address of order %s: %w", o.ID, err)
	}
	o.CreatedAt = time.UnixMilli(created).UTC()
	o.Items = []model.OrderItem{}
	return o, nil
}

// ListOrders returns orders matching f, newest first, with their items.
func (s *SQL) ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	q := s.sq.Select(orderColumns...).From("orders").OrderBy("created_at DESC", "id")
	if f.UserID != "" {
		q = q.Where(squirrel.Eq{"user_id": f.UserID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(f.Status)})
	}
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting orders: %w", err)
	}
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if err := s.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder returns one order with its items or model.ErrNotFound.
func (s *SQL) GetOrder(ctx context.Context, id string) (model.Order, error) {
	o, err := scanOrder(s.sq.Select(orderColumns...).From("orders").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, model.ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("selecting order: %w", err)
	}
	orders := []model.Order{o}
	if err := s.loadItems(ctx, orders); err != nil {
		return model.Order{}, err
	}
	return orders[0], nil
}

func (s *SQL) loadItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	rows, err := s.sq.Select(orderItemColumns...).From("order_items").
		Where(squirrel.Eq{"order_id": ids}).
		OrderBy("order_id", "line_no").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("selecting order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it         model.OrderItem
			label, sku sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &label, &sku); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if label.Valid {
			it.VariationLabel = strp(label.String)
		}
		if sku.Valid {
			it.VariationSKU = strp(sku.String)
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

// UpdateOrderStatus moves an order from one status to another. It returns
// model.ErrConflict when the order is no longer in status from.
func (s *SQL) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus) error {
	err := expectOne(s.sq.Update("orders").
		Set("status", string(to)).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		RunWith(s.db).
		ExecContext(ctx))
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrConflict
	}
	return err
}

// --- accounts

var profileColumns = []string{
	"user_id", "first_name", "last_name", "phone", "address", "city", "postal_code", "country", "updated_at",
}

// GetProfile returns the user's profile or model.ErrNotFound.
func (s *SQL) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var (
		p       model.Profile
		updated int64
	)
	err := s.sq.Select(profileColumns...).From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.Country, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, model.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("selecting profile: %w", err)
	}
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return p, nil
}

// UpsertProfile inserts or replaces the profile keyed by user id.
func (s *SQL) UpsertProfile(ctx context.Context, p model.Profile) error {
	_, err := s.sq.Insert("profiles").
		SetMap(map[string]any{
			"user_id":     p.UserID,
			"first_name":  p.FirstName,
			"last_name":   p.LastName,
			"phone":       p.Phone,
			"address":     p.Address,
			"city":        p.City,
			"postal_code": p.PostalCode,
			"country":     p.Country,
			"updated_at":  p.UpdatedAt.UnixMilli(),
		}).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			phone = excluded.phone,
			address = excluded.address,
			city = excluded.city,
			postal_code = excluded.postal_code,
			country = excluded.country,
			updated_at = excluded.updated_at`).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

// AdminUserID returns the id of the admin, or "" when the role is unclaimed.
func (s *SQL) AdminUserID(ctx context.Context) (string, error) {
	var id string
	err := s.sq.Select("user_id").From("admins").
		Where(squirrel.Eq{"singleton": 1}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("selecting admin: %w", err)
	}
	return id, nil
}

// InsertAdmin records userID as the admin. ErrDuplicate means the role is
// already held.
func (s *SQL) InsertAdmin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.sq.Insert("admins").
		SetMap(map[string]any{"singleton": 1, "user_id": userID, "claimed_at": at.UnixMilli()}).
		RunWith(s.db).
		ExecContext(ctx)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}
