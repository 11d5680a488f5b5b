package ollama

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// listTimeout bounds a shared /api/tags request, which runs detached from
// the callers waiting on it.
const listTimeout = 30 * time.Second

// ModelLister is the part of Client that Discovery needs.
type ModelLister interface {
	ListModels(ctx context.Context) ([]Model, error)
	BaseURL() string
}

// Discovery turns /api/tags into the list of model choices offered by the
// node. It never fails: on any error it returns the fallback list.
//
// The reported flags make the connected/disconnected notice appear once per
// transition instead of on every poll. They belong to the Discovery value, so
// two instances do not share them.
type Discovery struct {
	lister   ModelLister
	fallback string
	logger   *zap.Logger

	group singleflight.Group

	mu                  sync.Mutex
	lastSuccessReported bool
	lastFailureReported bool
}

// NewDiscovery creates a Discovery. An empty fallback makes failures yield an
// empty list; otherwise failures yield []string{fallback}.
func NewDiscovery(lister ModelLister, fallback string, logger *zap.Logger) *Discovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{
		lister:   lister,
		fallback: fallback,
		logger:   logger,
	}
}

// Models returns model names in server order, duplicates preserved.
// Concurrent callers share a single /api/tags request. The shared request
// does not inherit any caller's cancellation; a caller whose ctx ends first
// gets the fallback list while the others keep waiting for the result.
func (d *Discovery) Models(ctx context.Context) []string {
	ch := d.group.DoChan("tags", func() (interface{}, error) {
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		models, err := d.lister.ListModels(listCtx)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(models))
		for _, m := range models {
			names = append(names, m.Name)
		}
		return names, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return d.fallbackList()
	}
	if res.Err != nil {
		d.reportFailure(res.Err)
		return d.fallbackList()
	}

	names := res.Val.([]string)
	d.reportSuccess(len(names))

	// Callers may modify the slice; singleflight hands the same one to all.
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Fallback returns the configured placeholder model, if any.
func (d *Discovery) Fallback() string {
	return d.fallback
}

func (d *Discovery) fallbackList() []string {
	if d.fallback == "" {
		return []string{}
	}
	return []string{d.fallback}
}

func (d *Discovery) reportSuccess(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastSuccessReported {
		return
	}
	d.lastSuccessReported = true
	d.lastFailureReported = false
	d.logger.Info("connected to ollama",
		zap.String("url", d.lister.BaseURL()),
		zap.Int("models", n),
	)
}

func (d *Discovery) reportFailure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastFailureReported {
		return
	}
	d.lastFailureReported = true
	d.lastSuccessReported = false
	d.logger.Warn("ollama not reachable, model list unavailable",
		zap.String("url", d.lister.BaseURL()),
		zap.Error(err),
	)
}
