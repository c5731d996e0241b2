// Package task provides a registry of named periodic and one-shot tasks so
// session teardown can enumerate and cancel every outstanding timer.
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry owns the timers spawned by one session. All tasks are cooperative:
// a tick function runs to completion and is never preempted mid-call.
type Registry struct {
	mu      sync.Mutex
	stopped bool
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRegistry() *Registry {
	return &Registry{cancels: map[string]context.CancelFunc{}}
}

// Every schedules fn at a fixed interval under name until the task is
// cancelled or the registry stops. Names must be unique while a task is live.
func (r *Registry) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("task %q: interval must be positive", name)
	}
	taskCtx, err := r.register(ctx, name)
	if err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(name)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-taskCtx.Done():
				return
			case <-ticker.C:
				fn(taskCtx)
			}
		}
	}()
	return nil
}

// Go runs fn as a named long-lived task until fn returns or the task is
// cancelled. fn must honor its context.
func (r *Registry) Go(ctx context.Context, name string, fn func(context.Context)) error {
	taskCtx, err := r.register(ctx, name)
	if err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(name)
		fn(taskCtx)
	}()
	return nil
}

// After schedules fn to run once after d unless cancelled first.
func (r *Registry) After(ctx context.Context, name string, d time.Duration, fn func(context.Context)) error {
	taskCtx, err := r.register(ctx, name)
	if err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(name)

		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-taskCtx.Done():
		case <-timer.C:
			fn(taskCtx)
		}
	}()
	return nil
}

// Cancel stops the named task if it is live.
func (r *Registry) Cancel(name string) {
	r.mu.Lock()
	cancel := r.cancels[name]
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Names returns the live task names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.cancels))
	for name := range r.cancels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StopAll cancels every live task, waits for their tick functions to return,
// and rejects future scheduling. Safe to call more than once.
func (r *Registry) StopAll() {
	r.mu.Lock()
	r.stopped = true
	cancels := make([]context.CancelFunc, 0, len(r.cancels))
	for _, cancel := range r.cancels {
		cancels = append(cancels, cancel)
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	r.wg.Wait()
}

func (r *Registry) register(ctx context.Context, name string) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil, fmt.Errorf("task %q: registry stopped", name)
	}
	if _, exists := r.cancels[name]; exists {
		return nil, fmt.Errorf("task %q already scheduled", name)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	r.cancels[name] = cancel
	return taskCtx, nil
}

func (r *Registry) release(name string) {
	r.mu.Lock()
	cancel := r.cancels[name]
	delete(r.cancels, name)
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
