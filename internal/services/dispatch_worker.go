package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/pkg/logger"
)

// DispatchWorker consumes dispatch tasks from the Redis-backed queue and
// hands them to the hub.
type DispatchWorker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *DispatchTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

func NewDispatchWorker(cfg *config.RedisConfig) *DispatchWorker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[DispatchWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &DispatchWorker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function that delivers dispatch tasks.
func (w *DispatchWorker) SetProcessor(processor func(context.Context, *DispatchTask) error) {
	w.processor = processor
}

// Start begins consuming tasks.
func (w *DispatchWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeDispatch, w.handleDispatchTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[DispatchWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[DispatchWorker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker.
func (w *DispatchWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[DispatchWorker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[DispatchWorker] Shutdown complete")
}

func (w *DispatchWorker) handleDispatchTask(ctx context.Context, t *asynq.Task) error {
	var task DispatchTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return err
	}

	if w.processor == nil {
		logger.Infof("[DispatchWorker] No processor set, dropping task for user %d", task.UserID)
		return nil
	}

	return w.processor(ctx, &task)
}

// Global worker instance
var (
	globalDispatchWorker *DispatchWorker
	dispatchWorkerOnce   sync.Once
)

// InitDispatchWorker initializes the global worker when Redis is enabled.
func InitDispatchWorker(cfg *config.RedisConfig) *DispatchWorker {
	dispatchWorkerOnce.Do(func() {
		globalDispatchWorker = NewDispatchWorker(cfg)
	})
	return globalDispatchWorker
}
