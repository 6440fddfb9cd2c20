package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/pkg/logger"
)

const (
	TaskTypeDispatch = "notification:dispatch"
)

// DispatchTask carries one notification to deliver to a user's sessions.
type DispatchTask struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Metadata       string `json:"metadata,omitempty"`
}

// DispatchQueue is the outbound seam between notification persistence and
// real-time delivery. Publishing is at-most-once and never blocks the
// primary operation; delivery failures are not surfaced to the caller.
type DispatchQueue interface {
	// Enqueue publishes a dispatch task
	Enqueue(task *DispatchTask) error
	// IsAsync returns true if the queue hands tasks to a separate worker
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global dispatch queue instance
var (
	globalDispatchQueue DispatchQueue
	dispatchQueueOnce   sync.Once
)

// InitDispatchQueue initializes the global dispatch queue based on config.
func InitDispatchQueue(cfg *config.Config) DispatchQueue {
	dispatchQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncDispatchQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[Dispatch] Redis unavailable, falling back to sync mode: %v", err)
				globalDispatchQueue = NewSyncDispatchQueue()
			} else {
				logger.Infof("[Dispatch] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalDispatchQueue = queue
			}
		} else {
			logger.Infof("[Dispatch] Sync queue initialized (Redis disabled)")
			globalDispatchQueue = NewSyncDispatchQueue()
		}
	})
	return globalDispatchQueue
}

// GetDispatchQueue returns the global dispatch queue instance.
func GetDispatchQueue() DispatchQueue {
	return globalDispatchQueue
}

// AsyncDispatchQueue implements DispatchQueue using asynq (Redis-based).
type AsyncDispatchQueue struct {
	client *asynq.Client
}

func NewAsyncDispatchQueue(cfg *config.RedisConfig) (*AsyncDispatchQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the Redis connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncDispatchQueue{client: client}, nil
}

// Enqueue publishes a dispatch task to the async queue. MaxRetry is zero:
// a push that cannot be delivered is dropped, never replayed.
func (q *AsyncDispatchQueue) Enqueue(task *DispatchTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeDispatch, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return err
	}

	logger.Infof("[Dispatch] Task enqueued: id=%s, user=%d", info.ID, task.UserID)
	return nil
}

func (q *AsyncDispatchQueue) IsAsync() bool {
	return true
}

func (q *AsyncDispatchQueue) Close() error {
	return q.client.Close()
}

// SyncDispatchQueue implements DispatchQueue without Redis: the task is
// delivered in-process, off the request goroutine.
type SyncDispatchQueue struct {
	processor func(context.Context, *DispatchTask) error
}

func NewSyncDispatchQueue() *SyncDispatchQueue {
	return &SyncDispatchQueue{}
}

// SetProcessor sets the function that delivers dispatch tasks.
func (q *SyncDispatchQueue) SetProcessor(processor func(context.Context, *DispatchTask) error) {
	q.processor = processor
}

// Enqueue delivers the task in a goroutine so the caller never waits.
func (q *SyncDispatchQueue) Enqueue(task *DispatchTask) error {
	if q.processor == nil {
		logger.Infof("[Dispatch] Warning: no processor set, task will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Infof("[Dispatch] Task delivery failed: %v", err)
		}
	}()

	return nil
}

func (q *SyncDispatchQueue) IsAsync() bool {
	return false
}

func (q *SyncDispatchQueue) Close() error {
	return nil
}
