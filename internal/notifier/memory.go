package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryBridge is an in-process Bridge implementation. It backs headless
// agent runs and the test suite, and mirrors the platform semantics the
// adapter relies on: same-ID scheduling replaces, cancel of an unknown ID
// is a no-op.
type MemoryBridge struct {
	mu             sync.Mutex
	status         PermissionStatus
	grantOnRequest bool
	pending        map[int64]Notification

	// FailIDs makes Schedule fail for specific notification IDs. Used by
	// tests to exercise partial-failure isolation.
	FailIDs map[int64]bool
}

// NewMemoryBridge creates a bridge with the given initial permission state.
// When grantOnRequest is true, a permission request from the prompt state
// resolves to granted; otherwise it resolves to denied.
func NewMemoryBridge(status PermissionStatus, grantOnRequest bool) *MemoryBridge {
	return &MemoryBridge{
		status:         status,
		grantOnRequest: grantOnRequest,
		pending:        make(map[int64]Notification),
	}
}

func (b *MemoryBridge) CheckPermissions(_ context.Context) (PermissionStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status, nil
}

func (b *MemoryBridge) RequestPermissions(_ context.Context) (PermissionStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status == PermissionPrompt {
		if b.grantOnRequest {
			b.status = PermissionGranted
		} else {
			b.status = PermissionDenied
		}
	}
	return b.status, nil
}

func (b *MemoryBridge) Schedule(_ context.Context, notifications []Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range notifications {
		if b.FailIDs[n.ID] {
			return fmt.Errorf("schedule notification %d: bridge failure", n.ID)
		}
		b.pending[n.ID] = n
	}
	return nil
}

func (b *MemoryBridge) Cancel(_ context.Context, ids []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		delete(b.pending, id)
	}
	return nil
}

func (b *MemoryBridge) GetPending(_ context.Context) ([]Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, 0, len(b.pending))
	for _, n := range b.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
