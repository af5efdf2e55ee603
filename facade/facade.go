package facade

import (
	"time"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/kaggle"
	"github.com/quantfold/kagglemcp/logger"
)

// Facade composes validation, caching, normalization, and error
// classification over a kaggle.Client. Construct one per process with New;
// it owns its cache.
type Facade struct {
	client kaggle.Client
	cache  *Cache
	cfg    *config.Config
}

// New builds a Facade around client with a fresh cache.
func New(client kaggle.Client, cfg *config.Config) *Facade {
	return &Facade{
		client: client,
		cache:  NewCache(),
		cfg:    cfg,
	}
}

// Cache exposes the facade's cache for inspection (size, clear).
func (f *Facade) Cache() *Cache {
	return f.cache
}

// pageSize applies the configured default when the caller passed zero.
func (f *Facade) pageSize(requested int) int {
	if requested == 0 {
		return f.cfg.Pagination.DefaultPageSize
	}
	return requested
}

// page applies the default first page when the caller passed zero.
func (f *Facade) page(requested int) int {
	if requested == 0 {
		return 1
	}
	return requested
}

// guard is the single classification point of every operation: it runs the
// upstream stage, converts any failure into an error envelope, and recovers
// panics so no failure escapes the operation boundary.
func (f *Facade) guard(op string, fn func() (map[string]any, error)) (resp Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf("panic in %s: %v", op, r)
			logger.Errorw("operation panicked",
				logger.FieldOperation, op,
				logger.FieldError, err)
			kind, msg := Classify(err)
			resp = Failure(kind, msg)
		}
	}()

	payload, err := fn()
	if err != nil {
		kind, msg := Classify(err)
		logger.Warnw("operation failed",
			logger.FieldOperation, op,
			logger.FieldErrorType, string(kind),
			logger.FieldError, err.Error(),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		return Failure(kind, msg)
	}

	logger.Debugw("operation completed",
		logger.FieldOperation, op,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return Success(payload)
}
