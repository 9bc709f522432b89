package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/hiddenword-back/internal/queue"
	"github.com/kyiku/hiddenword-back/internal/scene"
)

// SceneGenerator defines the interface for building scenes.
type SceneGenerator interface {
	Generate(ctx context.Context, s scene.Settings) (*scene.Scene, error)
}

// QueueInterface defines the interface for the generation queue.
type QueueInterface interface {
	Acquire(ctx context.Context, id string, conn queue.Conn) (func(), error)
}

// runner is the generation path shared by the HTTP and WebSocket handlers.
type runner struct {
	generator SceneGenerator
	defaults  scene.Settings
	queue     QueueInterface
	timeout   time.Duration
	logger    *slog.Logger
}

func newRunner(generator SceneGenerator, defaults scene.Settings) runner {
	return runner{
		generator: generator,
		defaults:  defaults,
		logger:    slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger.
func (r *runner) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// SetQueue makes every generation wait for a slot of q.
func (r *runner) SetQueue(q QueueInterface) {
	r.queue = q
}

// SetTimeout bounds the time a request may wait for a slot and generate.
// Zero disables the bound.
func (r *runner) SetTimeout(d time.Duration) {
	r.timeout = d
}

// generate applies req to the defaults and runs the generator, holding a
// queue slot when a queue is set. conn receives queue positions while
// waiting and may be nil.
func (r *runner) generate(ctx context.Context, req *SceneRequest, conn queue.Conn) (*scene.Scene, error) {
	settings, err := req.Apply(r.defaults)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if r.queue != nil {
		release, err := r.queue.Acquire(ctx, uuid.NewString(), conn)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	sc, err := r.generator.Generate(ctx, settings)
	if err != nil {
		return nil, err
	}

	r.logger.Info("scene: generated",
		"id", sc.ID,
		"word", sc.Settings.Word,
		"placed", sc.Result.Placed,
		"requested", sc.Result.Requested,
		"status", string(sc.Result.Status),
	)
	return sc, nil
}
