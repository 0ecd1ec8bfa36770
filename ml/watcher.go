package ml

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Provider holds the currently deployed model and allows swapping it without
// interrupting in-flight predictions.
type Provider struct {
	mu    sync.RWMutex
	model Model
}

func NewProvider(model Model) *Provider {
	return &Provider{model: model}
}

func (p *Provider) Get() Model {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

func (p *Provider) Set(model Model) {
	p.mu.Lock()
	p.model = model
	p.mu.Unlock()
}

// Watch reloads the model whenever its file is rewritten and swaps it into
// the provider. The parent directory is watched because most writers replace
// the file instead of updating it in place. Watch blocks until ctx is done.
func Watch(ctx context.Context, logger *zap.Logger, modelType, path string, lambda float64, provider *Provider) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			model, err := LoadModel(modelType, path, lambda)
			if err != nil {
				logger.Warn("model reload failed, keeping previous model",
					zap.String("path", path), zap.Error(err))
				continue
			}
			provider.Set(model)
			logger.Info("model reloaded", zap.String("path", path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("model watcher error", zap.Error(err))
		}
	}
}
