package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// Config sizes the worker pool. Attempts, backoff and retention belong to
// each queue (see queues.go).
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // a task running longer is handed to another worker
	CleanupInterval time.Duration // how often finished tasks past retention are purged
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}

// QueuePath names the task database that sits next to the library database:
// "data/librarian.db" queues into "data/librarian-tasks.db". An in-memory
// library gets an in-memory queue.
func QueuePath(libraryDBPath string) string {
	if libraryDBPath == ":memory:" || strings.HasPrefix(libraryDBPath, "file::memory:") {
		return "file:librarian-tasks?mode=memory&cache=shared"
	}
	ext := filepath.Ext(libraryDBPath)
	return strings.TrimSuffix(libraryDBPath, ext) + "-tasks" + ext
}

// Client runs the overdue report and audit retention queues on backlite.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

func NewClient(libraryDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	path := QueuePath(libraryDBPath)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+"_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open task queue %s: %w", path, err)
	}
	db.SetMaxOpenConns(cfg.Workers + 4)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare task queue %s: %w", path, err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers}, nil
}

// Register adds queues; it must happen before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers and returns immediately. Later calls are no-ops.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	c.queue.Start(ctx)
	log.Info().Int("workers", c.workers).Msg("Task queue started")
}

// Shutdown lets running tasks finish until ctx expires, then closes the queue
// database. Tasks still running at the deadline are released to a later run.
func (c *Client) Shutdown(ctx context.Context) error {
	if c.running.CompareAndSwap(true, false) {
		if !c.queue.Stop(ctx) {
			log.Warn().Msg("Task queue stopped before all tasks finished")
		} else {
			log.Info().Msg("Task queue stopped")
		}
	}
	return c.db.Close()
}

func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// queueLogger forwards backlite's key/value pairs to zerolog.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Debug().Str("component", "tasks").Fields(params).Msg(message)
}

func (queueLogger) Error(message string, params ...any) {
	log.Error().Str("component", "tasks").Fields(params).Msg(message)
}
