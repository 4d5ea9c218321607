package notifier

import (
	"context"
	"sync"

	"vectora/internal/logger"
)

// Slot keeps the most recent notification for the active tab to pick up.
// Concurrent analyses overwrite each other: the last one to finish wins.
type Slot struct {
	mu     sync.RWMutex
	latest Notification
	set    bool
}

func NewSlot() *Slot { return &Slot{} }

func (s *Slot) Notify(_ context.Context, n Notification) error {
	s.mu.Lock()
	s.latest = n
	s.set = true
	s.mu.Unlock()
	return nil
}

// Latest returns the last notification, if any.
func (s *Slot) Latest() (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.set
}

// Multi delivers to every notifier in order; failures are logged and skipped.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	for _, target := range m {
		if target == nil {
			continue
		}
		if err := target.Notify(ctx, n); err != nil {
			logger.Warnf("notification delivery failed: %v", err)
		}
	}
	return nil
}
