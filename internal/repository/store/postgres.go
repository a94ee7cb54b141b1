package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vegshop/internal/domain"
)

// Postgres keeps the inventory and order history in the tables created by
// internal/migrate. Quantities are stored in their canonical text form.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

func (r *Postgres) Load(ctx context.Context) (State, error) {
	items, err := r.loadInventory(ctx)
	if err != nil {
		return State{}, domain.PersistenceError("load inventory", err)
	}
	orders, err := r.loadOrders(ctx)
	if err != nil {
		return State{}, domain.PersistenceError("load orders", err)
	}
	r.logger.Info("store: loaded", zap.Int("items", len(items)), zap.Int("orders", len(orders)))
	return State{Items: items, Orders: orders}, nil
}

func (r *Postgres) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.PersistenceError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceInventory(ctx, tx, items); err != nil {
		return domain.PersistenceError("save inventory", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.PersistenceError("commit", err)
	}
	return nil
}

// CommitCheckout rewrites the inventory and inserts the order in one transaction.
func (r *Postgres) CommitCheckout(ctx context.Context, items []domain.InventoryItem, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.PersistenceError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceInventory(ctx, tx, items); err != nil {
		return domain.PersistenceError("save inventory", err)
	}
	if err := insertOrder(ctx, tx, order); err != nil {
		return domain.PersistenceError("insert order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.PersistenceError("commit", err)
	}
	r.logger.Info("store: checkout committed", zap.String("order_id", order.ID))
	return nil
}

func (r *Postgres) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Postgres) loadInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	const q = `
SELECT name, quantity, sell_price::text, cost_price::text
FROM inventory_items
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var (
			item             domain.InventoryItem
			qty, price, cost string
		)
		if err := rows.Scan(&item.Name, &qty, &price, &cost); err != nil {
			return nil, err
		}
		if item.Stock, err = domain.ParseText(qty); err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Name, err)
		}
		if item.SellPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("item %q price: %w", item.Name, err)
		}
		if item.CostPrice, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("item %q cost: %w", item.Name, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Postgres) loadOrders(ctx context.Context) ([]domain.Order, error) {
	const ordersQuery = `
SELECT id::text, placed_at, phone, grand_total::text
FROM orders
ORDER BY placed_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, ordersQuery)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	index := map[string]int{}
	for rows.Next() {
		var (
			o        domain.Order
			placedAt time.Time
			total    string
		)
		if err := rows.Scan(&o.ID, &placedAt, &o.Phone, &total); err != nil {
			rows.Close()
			return nil, err
		}
		o.PlacedAt = placedAt.UTC()
		if o.GrandTotal, err = decimal.NewFromString(total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const linesQuery = `
SELECT order_id::text, line_id, item_name, quantity, unit_price::text
FROM order_lines
ORDER BY order_id, position ASC
`
	lineRows, err := r.pool.Query(ctx, linesQuery)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var (
			orderID, qty, price string
			line                domain.CartLine
		)
		if err := lineRows.Scan(&orderID, &line.ID, &line.ItemName, &qty, &price); err != nil {
			return nil, err
		}
		i, ok := index[orderID]
		if !ok {
			continue
		}
		if line.Quantity, err = domain.ParseText(qty); err != nil {
			return nil, fmt.Errorf("order %s line %s: %w", orderID, line.ID, err)
		}
		if line.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order %s line %s price: %w", orderID, line.ID, err)
		}
		orders[i].Lines = append(orders[i].Lines, line)
	}
	return orders, lineRows.Err()
}

func replaceInventory(ctx context.Context, tx pgx.Tx, items []domain.InventoryItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM inventory_items`); err != nil {
		return err
	}
	const q = `
INSERT INTO inventory_items (name, position, quantity, sell_price, cost_price)
VALUES ($1, $2, $3, $4::numeric, $5::numeric)
`
	for i, item := range items {
		if _, err := tx.Exec(ctx, q, item.Name, i, item.Stock.CanonicalText(), item.SellPrice.String(), item.CostPrice.String()); err != nil {
			return fmt.Errorf("insert %q: %w", item.Name, err)
		}
	}
	return nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	const orderQuery = `
INSERT INTO orders (id, placed_at, phone, grand_total)
VALUES ($1::uuid, $2, $3, $4::numeric)
`
	if _, err := tx.Exec(ctx, orderQuery, order.ID, order.PlacedAt, order.Phone, order.GrandTotal.String()); err != nil {
		return err
	}
	const lineQuery = `
INSERT INTO order_lines (order_id, position, line_id, item_name, quantity, unit_price)
VALUES ($1::uuid, $2, $3, $4, $5, $6::numeric)
`
	for i, line := range order.Lines {
		if _, err := tx.Exec(ctx, lineQuery, order.ID, i, line.ID, line.ItemName, line.Quantity.CanonicalText(), line.UnitPrice.String()); err != nil {
			return fmt.Errorf("insert line %d: %w", i, err)
		}
	}
	return nil
}
