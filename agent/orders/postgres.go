package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

// Open builds a bun.DB over the pgdriver connector.
func Open(cfg PostgresConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// PostgresStore serves order records from Postgres.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Status(ctx context.Context, orderID int64) (string, error) {
	if !InRange(orderID) {
		return "", ErrOrderNotFound
	}

	order := new(Order)
	err := s.db.NewSelect().Model(order).Where("o.id = ?", orderID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select order id=%d: %w", orderID, err)
	}
	return order.Status, nil
}

func (s *PostgresStore) Dump(ctx context.Context) ([]Order, error) {
	var all []Order
	if err := s.db.NewSelect().Model(&all).Order("o.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("dump orders: %w", err)
	}
	return all, nil
}

// Seed creates the orders table if needed and fills the supported id
// range with random statuses. Existing rows are left alone, so the
// seed is safe to run on every startup.
func (s *PostgresStore) Seed(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Order)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	seed := make([]Order, 0, MaxOrderID-MinOrderID+1)
	for id := MinOrderID; id <= MaxOrderID; id++ {
		seed = append(seed, Order{
			ID:     id,
			Status: Statuses[rand.IntN(len(Statuses))],
		})
	}

	if _, err := s.db.NewInsert().Model(&seed).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}
