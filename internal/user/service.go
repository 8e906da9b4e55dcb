package user

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound signals a lookup for an account that does not exist.
	ErrNotFound = errors.New("usuário não encontrado")

	// ErrDuplicateEmail signals a registration with an email that is
	// already taken. Emails are unique case-insensitively.
	ErrDuplicateEmail = errors.New("usuário já cadastrado com este e-mail")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so login failures stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("e-mail ou senha incorretos")

	// ErrAlreadyConfirmed signals a confirmation resend for an account
	// whose email was already confirmed.
	ErrAlreadyConfirmed = errors.New("e-mail já confirmado")
)

// NewUser carries the signup fields. The service owns id, password hash
// and creation time.
type NewUser struct {
	Name       string
	Email      string
	City       string
	State      string
	PostalCode string
	Address    string
	Password   string
}

// Snapshotter persists the full account collection after a mutation.
type Snapshotter interface {
	SaveUsers([]User) error
}

// Service owns the donor accounts for the process and is their only
// writer.
type Service struct {
	mu     sync.RWMutex
	users  []User
	now    func() time.Time
	snap   Snapshotter
	report func(error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSnapshotter registers a persistence hook called after every
// mutation. Snapshot failures are passed to report.
func WithSnapshotter(snap Snapshotter, report func(error)) Option {
	return func(s *Service) {
		s.snap = snap
		s.report = report
	}
}

// NewService creates an empty account service.
func NewService(opts ...Option) *Service {
	s := Service{
		now:    time.Now,
		report: func(error) {},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// Register creates a donor account. The password is stored as a bcrypt
// hash, never in the clear. Returns ErrDuplicateEmail when the email is
// already registered, compared case-insensitively.
func (s *Service) Register(nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), 12)
	if err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByEmailLocked(nu.Email) >= 0 {
		return User{}, ErrDuplicateEmail
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		City:         nu.City,
		State:        nu.State,
		PostalCode:   nu.PostalCode,
		Address:      nu.Address,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, u)
	s.persistLocked()
	return u, nil
}

// Authenticate verifies the credentials and returns the matching account.
// An unconfirmed email does not block login. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *Service) Authenticate(email, password string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByEmailLocked(email)
	if i < 0 {
		return User{}, ErrInvalidCredentials
	}

	u := s.users[i]
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "comparing password hash")
	}
	return u, nil
}

// GetByID returns the account with id, or ErrNotFound.
func (s *Service) GetByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// ConfirmEmail marks the account with the given email as confirmed.
func (s *Service) ConfirmEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByEmailLocked(email)
	if i < 0 {
		return ErrNotFound
	}
	if !s.users[i].EmailConfirmed {
		s.users[i].EmailConfirmed = true
		s.persistLocked()
	}
	return nil
}

// ResendConfirmation checks whether a confirmation email may be resent.
// The actual delivery is the caller's concern.
func (s *Service) ResendConfirmation(email string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByEmailLocked(email)
	if i < 0 {
		return ErrNotFound
	}
	if s.users[i].EmailConfirmed {
		return ErrAlreadyConfirmed
	}
	return nil
}

// ForgotPassword checks whether a reset email may be sent for the given
// address. The actual delivery is the caller's concern.
func (s *Service) ForgotPassword(email string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.indexByEmailLocked(email) < 0 {
		return ErrNotFound
	}
	return nil
}

// All returns a copy of every account in insertion order.
func (s *Service) All() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, len(s.users))
	copy(out, s.users)
	return out
}

// Restore replaces the accounts with a persisted snapshot. Meant for
// startup; it does not trigger the snapshot hook.
func (s *Service) Restore(users []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]User(nil), users...)
}

func (s *Service) indexByEmailLocked(email string) int {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (s *Service) persistLocked() {
	if s.snap == nil {
		return
	}
	snapshot := make([]User, len(s.users))
	copy(snapshot, s.users)
	if err := s.snap.SaveUsers(snapshot); err != nil {
		s.report(errors.Wrap(err, "saving user snapshot"))
	}
}
