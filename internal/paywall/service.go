package paywall

import (
	"context"
	"sync"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// Event notifies a subscriber that a report was unlocked.
type Event struct {
	ReportID   string
	UnlockedAt time.Time
}

// Service layers unlock notifications over a Store. Subscribers register for
// one specific report id; there is no page-wide event bus. Notification is
// synchronous in the Unlock call.
type Service struct {
	store  Store
	logger interfaces.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(Event)
}

// NewService wraps store. logger may not be nil.
func NewService(store Store, logger interfaces.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With(interfaces.F("component", "paywall")),
		subs:   make(map[string]map[int]func(Event)),
	}
}

// IsUnlocked reports the persisted unlock state for reportID.
func (s *Service) IsUnlocked(ctx context.Context, reportID string) (bool, error) {
	return s.store.IsUnlocked(ctx, reportID)
}

// Unlock persists the unlock and notifies subscribers of that report id.
func (s *Service) Unlock(ctx context.Context, reportID string) error {
	if err := s.store.Unlock(ctx, reportID); err != nil {
		return err
	}
	ev := Event{ReportID: reportID, UnlockedAt: time.Now().UTC()}

	s.mu.Lock()
	var fns []func(Event)
	for _, fn := range s.subs[reportID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.logger.Info("report unlocked",
		interfaces.F("report_id", reportID),
		interfaces.F("subscribers", len(fns)))
	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

// Subscribe registers fn for unlock events of one report id and returns an
// unsubscribe func. Subscriptions are scoped to the report instance; callers
// unsubscribe when their report view goes away.
func (s *Service) Subscribe(reportID string, fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	if s.subs[reportID] == nil {
		s.subs[reportID] = make(map[int]func(Event))
	}
	s.subs[reportID][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[reportID], id)
		if len(s.subs[reportID]) == 0 {
			delete(s.subs, reportID)
		}
	}
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
