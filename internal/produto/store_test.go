package produto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore(opts ...Option) *Store {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewStore(opts...)
}

func testInput(name string, expiration time.Time) Input {
	return Input{
		PhotoDescription: "foto de " + name,
		Name:             name,
		PickupInfo:       "Praça Central, sábados",
		Description:      "descrição de " + name,
		ExpirationDate:   expiration,
		ReleaseTime:      "2 horas",
	}
}

func TestAddThenGetByID(t *testing.T) {
	s := newTestStore()

	in := testInput("Cesta de Frutas", testNow.AddDate(0, 0, 10))
	added := s.Add(in)

	require.NotEmpty(t, added.ID)
	assert.Equal(t, testNow, added.CreatedAt)
	assert.Equal(t, StatusEmLiberacao, added.Status)

	got, err := s.GetByID(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.ExpirationDate, got.ExpirationDate)
}

func TestAddWithPastDateIsVencido(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Laticínios", testNow.AddDate(0, 0, -1)))
	assert.Equal(t, StatusVencidos, p.Status)
}

func TestUpdateRederivesUnpinnedStatus(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Pães", testNow.AddDate(0, 0, 10)))
	require.Equal(t, StatusEmLiberacao, p.Status)

	updated, err := s.Update(p.ID, testInput("Pães", testNow.AddDate(0, 0, -1)))
	require.NoError(t, err)
	assert.Equal(t, StatusVencidos, updated.Status)

	// and back again when the date moves into the future
	updated, err = s.Update(p.ID, testInput("Pães", testNow.AddDate(0, 0, 5)))
	require.NoError(t, err)
	assert.Equal(t, StatusEmLiberacao, updated.Status)
}

func TestUpdateKeepsPinnedStatus(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Marmitas", testNow.AddDate(0, 0, 30)))
	s.SetStatus(p.ID, StatusLiberados)

	// an edit that moves the expiration into the past must not demote a
	// listing the donor explicitly released
	updated, err := s.Update(p.ID, testInput("Marmitas", testNow.AddDate(0, 0, -1)))
	require.NoError(t, err)
	assert.Equal(t, StatusLiberados, updated.Status)

	s.SetStatus(p.ID, StatusDoados)
	updated, err = s.Update(p.ID, testInput("Marmitas", testNow.AddDate(0, 0, -2)))
	require.NoError(t, err)
	assert.Equal(t, StatusDoados, updated.Status)
}

func TestUpdatePreservesIDAndCreatedAt(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Legumes", testNow.AddDate(0, 0, 3)))
	updated, err := s.Update(p.ID, testInput("Legumes Orgânicos", testNow.AddDate(0, 0, 4)))
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Legumes Orgânicos", updated.Name)
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore()

	_, err := s.Update("nope", testInput("x", testNow))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusIdempotent(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Frutas", testNow.AddDate(0, 0, 1)))

	s.SetStatus(p.ID, StatusDoados)
	once, err := s.GetByID(p.ID)
	require.NoError(t, err)

	s.SetStatus(p.ID, StatusDoados)
	twice, err := s.GetByID(p.ID)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestSetStatusUnknownIDIsNoop(t *testing.T) {
	s := newTestStore()
	p := s.Add(testInput("Frutas", testNow.AddDate(0, 0, 1)))

	s.SetStatus("nope", StatusDoados)

	got, err := s.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 1, s.Count())
}

func TestRemoveThenGetByID(t *testing.T) {
	s := newTestStore()

	p := s.Add(testInput("Frutas", testNow.AddDate(0, 0, 1)))
	s.Remove(p.ID)

	_, err := s.GetByID(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, s.Count())

	// removing again is a no-op
	s.Remove(p.ID)
}

func TestListByStatusInsertionOrder(t *testing.T) {
	s := newTestStore()

	a := s.Add(testInput("A", testNow.AddDate(0, 0, 3)))
	b := s.Add(testInput("B", testNow.AddDate(0, 0, 1)))
	v := s.Add(testInput("V", testNow.AddDate(0, 0, -1)))
	c := s.Add(testInput("C", testNow.AddDate(0, 0, 2)))

	pending := s.ListByStatus(StatusEmLiberacao)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{pending[0].ID, pending[1].ID, pending[2].ID})

	expired := s.ListByStatus(StatusVencidos)
	require.Len(t, expired, 1)
	assert.Equal(t, v.ID, expired[0].ID)

	assert.Empty(t, s.ListByStatus(StatusDoados))
	assert.Equal(t, 4, s.Count())
}

func TestSweepExpired(t *testing.T) {
	now := testNow
	s := NewStore(WithClock(func() time.Time { return now }))

	fresh := s.Add(testInput("Fresh", testNow.AddDate(0, 0, 10)))
	soon := s.Add(testInput("Soon", testNow.AddDate(0, 0, 1)))
	pinned := s.Add(testInput("Pinned", testNow.AddDate(0, 0, 1)))
	s.SetStatus(pinned.ID, StatusLiberados)

	// nothing has expired yet
	assert.Zero(t, s.SweepExpired())

	now = testNow.AddDate(0, 0, 2)
	assert.Equal(t, 1, s.SweepExpired())

	got, err := s.GetByID(soon.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVencidos, got.Status)

	got, err = s.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEmLiberacao, got.Status)

	// the pin survives the sweep
	got, err = s.GetByID(pinned.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusLiberados, got.Status)

	// a second sweep at the same instant changes nothing
	assert.Zero(t, s.SweepExpired())
}

type spySnapshotter struct {
	calls int
	last  []Produto
}

func (s *spySnapshotter) SaveProdutos(produtos []Produto) error {
	s.calls++
	s.last = produtos
	return nil
}

func TestSnapshotterCalledOnMutations(t *testing.T) {
	spy := &spySnapshotter{}
	s := newTestStore(WithSnapshotter(spy, func(error) {}))

	p := s.Add(testInput("A", testNow.AddDate(0, 0, 1)))
	assert.Equal(t, 1, spy.calls)

	_, err := s.Update(p.ID, testInput("A2", testNow.AddDate(0, 0, 2)))
	require.NoError(t, err)
	assert.Equal(t, 2, spy.calls)

	s.SetStatus(p.ID, StatusDoados)
	assert.Equal(t, 3, spy.calls)

	s.Remove(p.ID)
	assert.Equal(t, 4, spy.calls)
	assert.Empty(t, spy.last)

	// reads and no-ops do not snapshot
	s.Remove(p.ID)
	s.Count()
	assert.Equal(t, 4, spy.calls)
}

func TestRestoreReplacesCollection(t *testing.T) {
	spy := &spySnapshotter{}
	s := newTestStore(WithSnapshotter(spy, func(error) {}))

	snapshot := []Produto{
		{ID: "p1", Name: "Pães", Status: StatusLiberados, CreatedAt: testNow},
		{ID: "p2", Name: "Frutas", Status: StatusEmLiberacao, CreatedAt: testNow},
	}
	s.Restore(snapshot)

	assert.Equal(t, 2, s.Count())
	got, err := s.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, "Pães", got.Name)

	// restore must not trigger the snapshot hook
	assert.Zero(t, spy.calls)
}
