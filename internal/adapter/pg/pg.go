package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/port"
)

var _ port.TradeStore = (*PgRepo)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
  id             TEXT PRIMARY KEY,
  symbol         TEXT NOT NULL,
  maker_order_id TEXT NOT NULL,
  taker_order_id TEXT NOT NULL,
  taker_side     TEXT NOT NULL,
  price          NUMERIC NOT NULL,
  quantity       NUMERIC NOT NULL,
  timestamp      TIMESTAMPTZ NOT NULL,
  seq            BIGINT NOT NULL DEFAULT 0
);
ALTER TABLE trades ADD COLUMN IF NOT EXISTS seq BIGINT NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS trades_maker_order_id_idx ON trades (maker_order_id);
CREATE INDEX IF NOT EXISTS trades_taker_order_id_idx ON trades (taker_order_id);
`

type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finish to work with database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

// Migrate creates the trades table and its order id indexes.
func (p *PgRepo) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pg: migrate: %w", err)
	}
	return nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgRepo) SaveTrade(ctx context.Context, t *domain.Trade) error {
	if t == nil {
		return errors.New("pg: nil trade")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO trades(id, symbol, maker_order_id, taker_order_id, taker_side, price, quantity, timestamp, seq)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`, t.ID, t.Symbol, t.MakerOrderID, t.TakerOrderID, string(t.TakerSide), t.Price, t.Quantity, t.Timestamp, int64(t.Seq))
	if err != nil {
		return fmt.Errorf("pg: save trade: %w", err)
	}
	return nil
}

// LoadTradesForOrder returns the trades in which orderID was maker or taker
// in execution order.
func (p *PgRepo) LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, symbol, maker_order_id, taker_order_id, taker_side, price, quantity, timestamp, seq
FROM trades
WHERE maker_order_id = $1 OR taker_order_id = $1
ORDER BY timestamp ASC, seq ASC
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pg: load trades: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Trade, error) {
		var t domain.Trade
		var side string
		var seq int64
		if err := row.Scan(&t.ID, &t.Symbol, &t.MakerOrderID, &t.TakerOrderID, &side, &t.Price, &t.Quantity, &t.Timestamp, &seq); err != nil {
			return nil, err
		}
		t.TakerSide = domain.Side(side)
		t.Seq = uint64(seq)
		return &t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pg: scan trades: %w", err)
	}
	return res, nil
}
