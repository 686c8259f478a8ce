package selection

import (
	"context"
	"fmt"
	"sync"

	"vendordesk/internal/domain"
)

// Locator reports the viewer's current position, for example the result of
// a browser geolocation prompt.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}

type LocatorFunc func(ctx context.Context) (domain.Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (domain.Coordinates, error) {
	return f(ctx)
}

// Snapshot is what the map needs to render: the selected order, if any, and
// the point to center on, if any.
type Snapshot struct {
	SelectedOrderID *int
	FocalPoint      *domain.Coordinates
}

// State owns which order is selected and where the map is centered.
// Subscribers are told about every focal point change; the map recenters on
// those notifications and never needs a handle on this object's internals.
type State struct {
	mu          sync.Mutex
	selectedID  *int
	focal       *domain.Coordinates
	subscribers map[int]chan Snapshot
	nextSubID   int
}

func New() *State {
	return &State{subscribers: make(map[int]chan Snapshot)}
}

// Select makes order the current selection. The focal point follows the
// order's location and is cleared when the order has none or order is nil.
func (s *State) Select(order *domain.EnrichedOrder) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var focal *domain.Coordinates
	if order != nil {
		id := order.OrderID
		s.selectedID = &id
		if order.Location != nil {
			c := *order.Location
			focal = &c
		}
	} else {
		s.selectedID = nil
	}

	s.setFocalLocked(focal)
	return s.snapshotLocked()
}

func (s *State) Clear() Snapshot {
	return s.Select(nil)
}

// Locate centers the map on the position reported by locator without
// touching the selection. A failed or invalid reading leaves state unchanged.
func (s *State) Locate(ctx context.Context, locator Locator) (Snapshot, error) {
	coords, err := locator.Locate(ctx)
	if err != nil {
		return s.Snapshot(), fmt.Errorf("locating viewer: %w", err)
	}
	if !coords.Valid() {
		return s.Snapshot(), fmt.Errorf("locating viewer: coordinates out of range: %v,%v", coords.Latitude, coords.Longitude)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setFocalLocked(&coords)
	return s.snapshotLocked(), nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every focal
// point change. Only the latest undelivered snapshot is kept, so a slow
// reader skips intermediate positions. cancel closes the channel.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 1)
	s.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *State) setFocalLocked(focal *domain.Coordinates) {
	if sameFocal(s.focal, focal) {
		return
	}
	s.focal = focal

	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *State) snapshotLocked() Snapshot {
	var snap Snapshot
	if s.selectedID != nil {
		id := *s.selectedID
		snap.SelectedOrderID = &id
	}
	if s.focal != nil {
		c := *s.focal
		snap.FocalPoint = &c
	}
	return snap
}

func sameFocal(a, b *domain.Coordinates) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
