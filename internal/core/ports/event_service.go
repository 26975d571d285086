package ports

import (
	"context"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// Broadcaster pushes committed changes to connected clients. Delivery is
// best effort: there is no acknowledgement and publishing never fails a write.
type Broadcaster interface {
	Publish(ctx context.Context, event domain.ChangeEvent)
}

// TxManager runs fn inside a single database transaction carried by ctx.
// Calls made while a transaction is already open join it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore remembers which announcement a client-supplied key created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (id int64, found bool, err error)
	Remember(ctx context.Context, key string, id int64) error
}
