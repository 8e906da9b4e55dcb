package produto

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound signals a lookup for an id that is not in the store. Absence
// is an expected outcome; callers redirect instead of failing.
var ErrNotFound = errors.New("produto não encontrado")

// Input carries the donor-editable fields of a listing. ID, status and
// creation time are owned by the store. The store accepts any well-typed
// input; required-field validation happens at the form boundary.
type Input struct {
	Photo            []byte
	PhotoDescription string
	Name             string
	PickupInfo       string
	Description      string
	ExpirationDate   time.Time
	ReleaseTime      string
}

// Snapshotter persists the full collection after a mutation.
type Snapshotter interface {
	SaveProdutos([]Produto) error
}

// Store owns the canonical listing collection for the process and is its
// only writer. Reads return copies; the backing slice keeps insertion order.
type Store struct {
	mu       sync.RWMutex
	produtos []Produto
	now      func() time.Time
	snap     Snapshotter
	report   func(error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for status derivation and
// creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSnapshotter registers a persistence hook called after every mutation.
// Snapshot failures are passed to report; they never fail the mutation.
func WithSnapshotter(snap Snapshotter, report func(error)) Option {
	return func(s *Store) {
		s.snap = snap
		s.report = report
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := Store{
		now:    time.Now,
		report: func(error) {},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// Add creates a listing from in, deriving its status from the expiration
// date at the current wall-clock time, and appends it to the collection.
func (s *Store) Add(in Input) Produto {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := Produto{
		ID:               uuid.NewString(),
		Photo:            in.Photo,
		PhotoDescription: in.PhotoDescription,
		Name:             in.Name,
		PickupInfo:       in.PickupInfo,
		Description:      in.Description,
		ExpirationDate:   in.ExpirationDate,
		ReleaseTime:      in.ReleaseTime,
		Status:           DeriveStatus(in.ExpirationDate, now),
		CreatedAt:        now,
	}
	s.produtos = append(s.produtos, p)
	s.persistLocked()
	return p
}

// Update replaces every donor-editable field of the listing with id.
// A status pinned by an explicit donor action (liberados, doados) is kept;
// otherwise the status is re-derived from the new expiration date.
func (s *Store) Update(id string, in Input) (Produto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Produto{}, ErrNotFound
	}

	p := &s.produtos[i]
	status := p.Status
	if !status.Pinned() {
		status = DeriveStatus(in.ExpirationDate, s.now())
	}
	p.Photo = in.Photo
	p.PhotoDescription = in.PhotoDescription
	p.Name = in.Name
	p.PickupInfo = in.PickupInfo
	p.Description = in.Description
	p.ExpirationDate = in.ExpirationDate
	p.ReleaseTime = in.ReleaseTime
	p.Status = status

	s.persistLocked()
	return *p, nil
}

// SetStatus unconditionally overwrites the status of the listing with id.
// Unknown ids are a no-op.
func (s *Store) SetStatus(id string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	if s.produtos[i].Status == status {
		return
	}
	s.produtos[i].Status = status
	s.persistLocked()
}

// Remove deletes the listing with id. Unknown ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.produtos = append(s.produtos[:i], s.produtos[i+1:]...)
	s.persistLocked()
}

// GetByID returns the listing with id, or ErrNotFound.
func (s *Store) GetByID(id string) (Produto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Produto{}, ErrNotFound
	}
	return s.produtos[i], nil
}

// ListByStatus returns every listing with the given status, in insertion
// order.
func (s *Store) ListByStatus(status Status) []Produto {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Produto
	for _, p := range s.produtos {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the total number of listings regardless of status.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.produtos)
}

// All returns a copy of the whole collection in insertion order.
func (s *Store) All() []Produto {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Produto, len(s.produtos))
	copy(out, s.produtos)
	return out
}

// Restore replaces the collection with a persisted snapshot. Meant for
// startup; it does not trigger the snapshot hook.
func (s *Store) Restore(produtos []Produto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.produtos = append([]Produto(nil), produtos...)
}

// SweepExpired re-derives the status of every unpinned listing at the
// current wall-clock time and reports how many changed. Listings that
// passed their expiration date since the last edit move to vencidos.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int
	for i := range s.produtos {
		p := &s.produtos[i]
		if p.Status.Pinned() {
			continue
		}
		if derived := DeriveStatus(p.ExpirationDate, now); derived != p.Status {
			p.Status = derived
			n++
		}
	}
	if n > 0 {
		s.persistLocked()
	}
	return n
}

func (s *Store) indexLocked(id string) int {
	for i := range s.produtos {
		if s.produtos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() {
	if s.snap == nil {
		return
	}
	snapshot := make([]Produto, len(s.produtos))
	copy(snapshot, s.produtos)
	if err := s.snap.SaveProdutos(snapshot); err != nil {
		s.report(errors.Wrap(err, "saving produto snapshot"))
	}
}
