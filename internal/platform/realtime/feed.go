package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/platform/db"
)

// Channel is the Postgres NOTIFY channel carrying changes.
const Channel = "careconnect_changes"

// Feed publishes changes with pg_notify and listens for them on a dedicated
// connection, handing each to the hub. Notifications sent inside a
// transaction are only delivered if it commits.
type Feed struct {
	pool   *pgxpool.Pool
	hub    *Hub
	logger zerolog.Logger
}

func NewFeed(pool *pgxpool.Pool, hub *Hub, logger zerolog.Logger) *Feed {
	return &Feed{pool: pool, hub: hub, logger: logger}
}

func (f *Feed) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if _, err := db.Conn(ctx, f.pool).Exec(ctx, "SELECT pg_notify($1, $2)", Channel, string(payload)); err != nil {
		return fmt.Errorf("notify change: %w", err)
	}
	return nil
}

// Listen blocks until ctx is cancelled, reconnecting after failures.
func (f *Feed) Listen(ctx context.Context) {
	backoff := time.Second
	for {
		err := f.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		f.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("change listener disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (f *Feed) listenOnce(ctx context.Context) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	f.logger.Info().Str("channel", Channel).Msg("listening for record changes")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		change, err := decodeChange(n.Payload)
		if err != nil {
			f.logger.Error().Err(err).Msg("discarding malformed change notification")
			continue
		}
		f.hub.Dispatch(change)
	}
}

func decodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Table == "" || c.Op == "" {
		return Change{}, errors.New("change is missing table or op")
	}
	return c, nil
}
