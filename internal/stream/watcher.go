package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Watcher tails MongoDB change streams and publishes the matching hub topic
// for every event, so writes done outside this process still reach live
// subscribers. A failed stream is reopened with linear backoff.
type Watcher struct {
	db      *mongo.Database
	hub     *Hub
	logger  *slog.Logger
	backoff time.Duration
	stop    chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWatcher(db *mongo.Database, hub *Hub, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		db:      db,
		hub:     hub,
		logger:  logger,
		backoff: 2 * time.Second,
		stop:    make(chan struct{}),
	}
}

// Start launches one watch goroutine per collection/topic pair.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	pairs := []struct {
		collection string
		topic      string
	}{
		{"preguntas", TopicPreguntas},
		{"usuarios", TopicUsuarios},
	}
	for _, p := range pairs {
		w.wg.Add(1)
		go w.watch(ctx, p.collection, p.topic)
	}
}

// Stop signals the watch goroutines and waits for them. The cancel unblocks
// any goroutine parked inside a change-stream read.
func (w *Watcher) Stop() {
	close(w.stop)
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) watch(ctx context.Context, collection, topic string) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		cs, err := w.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
		if err != nil {
			w.logger.Error("open change stream", "collection", collection, "err", err)
			if !w.sleep(ctx) {
				return
			}
			continue
		}

		for cs.Next(ctx) {
			w.hub.Publish(topic)
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			w.logger.Error("change stream closed", "collection", collection, "err", err)
		}
		_ = cs.Close(context.Background())

		if !w.sleep(ctx) {
			return
		}
	}
}

func (w *Watcher) sleep(ctx context.Context) bool {
	select {
	case <-time.After(w.backoff):
		return true
	case <-w.stop:
		return false
	case <-ctx.Done():
		return false
	}
}
