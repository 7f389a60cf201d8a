package vectorstore

import (
	"github.com/phuslu/log"

	"productrag/internal/logger"
)

const (
	defaultBatchSize = 32
	defaultParallel  = 4
)

type options struct {
	storage        Storage
	logger         *log.Logger
	queryCacheSize int
	batchSize      int
	parallel       int
}

// Option configures a Store.
type Option func(*options)

// WithStorage makes the store durable. Without it the store is in-memory
// only and discarded when the process exits.
func WithStorage(s Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger sets the logger used for store events.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithQueryCache keeps the embeddings of the n most recent query texts.
// Zero disables the cache.
func WithQueryCache(n int) Option {
	return func(o *options) { o.queryCacheSize = n }
}

// WithBatchSize sets how many texts are sent to the embedder per call.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithParallelism bounds the number of concurrent embedder calls on upsert.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallel = n
		}
	}
}

func defaultOptions() options {
	return options{
		logger:    logger.Discard(),
		batchSize: defaultBatchSize,
		parallel:  defaultParallel,
	}
}
