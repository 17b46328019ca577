package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/repository/postgres"
)

// Listener bridges postgres NOTIFY into the in-process distributor, so
// events committed through other instances still reach local subscribers.
type Listener struct {
	db     *postgres.Connection
	dist   *Distributor
	logger *logger.Logger
}

func NewListener(db *postgres.Connection, dist *Distributor, logger *logger.Logger) *Listener {
	return &Listener{
		db:     db,
		dist:   dist,
		logger: logger,
	}
}

// Run listens until the context is cancelled, reconnecting after transient
// failures. Signals lost during a reconnect window are tolerated;
// correctness rests on re-query, not on delivery.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Error("feed listener disconnected, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+postgres.NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", postgres.NotifyChannel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		subjectID, err := uuid.Parse(notification.Payload)
		if err != nil {
			l.logger.Warn("discarding malformed feed notification", "payload", notification.Payload)
			continue
		}

		l.dist.Publish(subjectID)
	}
}
