package live

import "context"

// QueryFunc produces a snapshot of some stored state.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// Watch runs query once immediately and again after every change published to
// one of tables. Snapshots are delivered on the returned channel, which holds
// at most one undelivered snapshot: a slow reader skips intermediate states
// and always receives the latest. The channel is closed when ctx is done.
//
// A failing query is logged and skipped; the stream stays open.
func Watch[T any](ctx context.Context, b *Broker, query QueryFunc[T], tables ...Table) <-chan T {
	out := make(chan T, 1)

	// Subscribe before the first query so no write is missed in between.
	changes, cancel := b.Subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() {
			snap, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Error("live query", "tables", tables, "error", err)
				}
				return
			}
			// Replace any snapshot the reader has not picked up yet.
			select {
			case <-out:
			default:
			}
			select {
			case out <- snap:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return out
}
