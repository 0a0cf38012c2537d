package orders

import (
	"context"
	"errors"

	"github.com/uptrace/bun"
)

var ErrOrderNotFound = errors.New("order not found")

// Supported order id range. Lookups outside it resolve to
// ErrOrderNotFound without touching the database.
const (
	MinOrderID int64 = 100
	MaxOrderID int64 = 200
)

// Statuses is the fixed label set an order can carry.
var Statuses = []string{"Shipped", "Pending", "Delivered", "Processing"}

// Order is one pre-seeded order record.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID     int64  `bun:"id,pk"`
	Status string `bun:"status,notnull"`
}

// Store is the read-mostly order record boundary.
type Store interface {
	// Status returns the status label for an order id.
	Status(ctx context.Context, orderID int64) (string, error)
	// Dump returns every order ordered by id, for diagnostics.
	Dump(ctx context.Context) ([]Order, error)
}

// InRange reports whether an order id is inside the supported range.
func InRange(orderID int64) bool {
	return orderID >= MinOrderID && orderID <= MaxOrderID
}
