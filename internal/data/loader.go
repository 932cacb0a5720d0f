package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrFlowNotFound = errors.New("flow asset not found")

// LoadResult is the resolved value of an asynchronous flow load.
type LoadResult struct {
	Flow *Flow
	Err  error
}

// FlowLoader resolves flow addresses to assets under one directory.
// Concurrent loads of the same address share a single read, and resolved
// flows are cached for the process lifetime.
type FlowLoader struct {
	dir   string
	group singleflight.Group
	mu    sync.Mutex
	cache map[string]*Flow
	log   *zap.Logger
}

func NewFlowLoader(dir string, log *zap.Logger) *FlowLoader {
	return &FlowLoader{
		dir:   dir,
		cache: make(map[string]*Flow),
		log:   log,
	}
}

// Load resolves an address synchronously.
func (l *FlowLoader) Load(address string) (*Flow, error) {
	v, err, _ := l.group.Do(address, func() (any, error) {
		return l.load(address)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Flow), nil
}

// LoadAsync resolves an address on a background goroutine. The returned
// channel receives exactly one result and is never closed early.
func (l *FlowLoader) LoadAsync(ctx context.Context, address string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		res := l.group.DoChan(address, func() (any, error) {
			return l.load(address)
		})
		select {
		case r := <-res:
			f, _ := r.Val.(*Flow)
			out <- LoadResult{Flow: f, Err: r.Err}
		case <-ctx.Done():
			out <- LoadResult{Err: ctx.Err()}
		}
	}()
	return out
}

func (l *FlowLoader) load(address string) (*Flow, error) {
	l.mu.Lock()
	if f, ok := l.cache[address]; ok {
		l.mu.Unlock()
		return f, nil
	}
	l.mu.Unlock()

	if address == "" || strings.ContainsAny(address, `/\`) || strings.Contains(address, "..") {
		return nil, fmt.Errorf("%w: bad address %q", ErrFlowNotFound, address)
	}
	path := filepath.Join(l.dir, address+".yaml")
	f, err := LoadFlowFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, address)
		}
		return nil, err
	}
	if f.Address != address {
		return nil, fmt.Errorf("%w: %s declares address %q", ErrInvalidFlow, path, f.Address)
	}

	l.mu.Lock()
	l.cache[address] = f
	l.mu.Unlock()
	l.log.Debug("flow loaded", zap.String("address", address), zap.Int("archetypes", len(f.Rooms)))
	return f, nil
}
