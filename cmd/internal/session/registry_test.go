package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/domain/sqlite"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCollections(t *testing.T) reminder.Repository {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "visuall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })
	return repository.NewCollectionRepository(repository.NewKeyValueRepository(db))
}

func newRegistryOver(t *testing.T, collections reminder.Repository, idleTimeout time.Duration) *Registry {
	t.Helper()
	validator := forms.NewValidator(time.Now, time.UTC, false)
	factory := func() *reminder.Store {
		return reminder.NewStore(collections, validator, time.Now)
	}

	reg := NewRegistry(context.Background(), factory, time.Hour, 5*time.Minute, idleTimeout)
	t.Cleanup(reg.Close)
	return reg
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return newRegistryOver(t, openCollections(t), time.Hour)
}

func reminderForm(doctor string) forms.ReminderForm {
	return forms.ReminderForm{
		DoctorName: doctor,
		Specialty:  "Cardiologia",
		Date:       time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:       "09:30",
		Location:   "InCor",
	}
}

// gatedCollections blocks reads of one collection until open is closed.
type gatedCollections struct {
	reminder.Repository
	key     string
	reading chan struct{}
	open    chan struct{}
}

func (g *gatedCollections) Read(ctx context.Context, key string) ([]entity.Reminder, bool, error) {
	if key == g.key {
		close(g.reading)
		<-g.open
	}
	return g.Repository.Read(ctx, key)
}

func TestAcquireReusesStore(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	first, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)
	second, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 3, first.UserID())

	other, err := reg.Acquire(ctx, 4)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, reg.Len())
}

func TestConcurrentAcquireSharesStore(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	stores := make([]*reminder.Store, 8)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store, err := reg.Acquire(ctx, 3)
			assert.NoError(t, err)
			stores[i] = store
		}(i)
	}
	wg.Wait()

	for _, store := range stores[1:] {
		assert.Same(t, stores[0], store)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestColdLoadDoesNotBlockOtherUsers(t *testing.T) {
	gate := &gatedCollections{
		Repository: openCollections(t),
		key:        reminder.CollectionKey(3),
		reading:    make(chan struct{}),
		open:       make(chan struct{}),
	}
	reg := newRegistryOver(t, gate, time.Hour)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		_, err := reg.Acquire(ctx, 3)
		slow <- err
	}()
	<-gate.reading

	fast := make(chan error, 1)
	go func() {
		_, err := reg.Acquire(ctx, 4)
		fast <- err
	}()

	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("user 4 waited on the load of user 3")
	}

	close(gate.open)
	require.NoError(t, <-slow)
	assert.Equal(t, 2, reg.Len())
}

func TestReleaseReloadsFromStorage(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	store, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)
	created, err := store.Create(ctx, reminderForm("Dr. Ana"))
	require.NoError(t, err)

	reg.Release(3)
	reg.Release(3)
	assert.Equal(t, 0, reg.Len())

	again, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)
	assert.NotSame(t, store, again)

	got, err := again.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ana", got.DoctorName)
}

func TestReleasedStoreRejectsWrites(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	stale, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)
	_, err = stale.Create(ctx, reminderForm("Dr. Ana"))
	require.NoError(t, err)

	reg.Release(3)
	fresh, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)

	_, err = stale.Create(ctx, reminderForm("Dr. Bruno"))
	assert.ErrorIs(t, err, reminder.ErrNotAuthenticated)
	assert.Equal(t, 0, stale.UserID())

	created, err := fresh.Create(ctx, reminderForm("Dr. Carla"))
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	reg.Release(3)
	reloaded, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)

	all := reloaded.All()
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
	assert.ElementsMatch(t, []string{"Dr. Ana", "Dr. Carla"}, []string{all[0].DoctorName, all[1].DoctorName})
}

func TestEvictIdle(t *testing.T) {
	tests := []struct {
		name        string
		idleTimeout time.Duration
		wantEvicted int
		wantLeft    int
	}{
		{name: "idle sessions released", idleTimeout: time.Hour, wantEvicted: 2, wantLeft: 1},
		{name: "long timeout keeps all", idleTimeout: 2 * time.Hour, wantEvicted: 0, wantLeft: 3},
		{name: "disabled", idleTimeout: 0, wantEvicted: 0, wantLeft: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistryOver(t, openCollections(t), tt.idleTimeout)
			ctx := context.Background()

			clock := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
			reg.now = func() time.Time { return clock }

			stores := map[int]*reminder.Store{}
			for _, userID := range []int{1, 2, 3} {
				store, err := reg.Acquire(ctx, userID)
				require.NoError(t, err)
				stores[userID] = store
			}

			clock = clock.Add(30 * time.Minute)
			_, err := reg.Acquire(ctx, 2)
			require.NoError(t, err)
			clock = clock.Add(45 * time.Minute)

			assert.Equal(t, tt.wantEvicted, reg.EvictIdle())
			assert.Equal(t, tt.wantLeft, reg.Len())
			assert.Equal(t, 2, stores[2].UserID())
			if tt.wantEvicted > 0 {
				assert.Equal(t, 0, stores[1].UserID())
				assert.Equal(t, 0, stores[3].UserID())
			}
		})
	}
}

func TestStartAndCloseStopJanitor(t *testing.T) {
	reg := newTestRegistry(t)

	reg.Start()
	reg.Start()

	_, err := reg.Acquire(context.Background(), 3)
	require.NoError(t, err)

	closed := make(chan struct{})
	go func() {
		reg.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not stop the janitor")
	}
	assert.Equal(t, 0, reg.Len())
}

func TestAcquireAfterClose(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Acquire(ctx, 3)
	require.NoError(t, err)

	reg.Close()
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Acquire(ctx, 3)
	assert.ErrorIs(t, err, ErrClosed)
}
