package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/settings"
	"github.com/rahim112008/ovinmanager/internal/repository/store"
)

var sofiane = models.User{ID: "u1", Username: "sofiane", PasswordHash: "$2a$10$secret", FarmName: "Ferme Atlas", Role: models.RoleAdmin}

func seed(t *testing.T, repos *repository.Set) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.Users.Save(ctx, sofiane))
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-1", UserID: "u1", Name: "Ferme Atlas"}))
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-2", UserID: "u1", Name: "Ferme Nord"}))
	require.NoError(t, repos.Breeders.Save(ctx, models.Breeder{ID: "BRD-X", UserID: "u2", Name: "Autre"}))
	require.NoError(t, repos.Sheep.Save(ctx, models.Sheep{ID: "s1", UserID: "u1", BreederID: "BRD-1", TagID: "HAM-001"}))
	require.NoError(t, repos.Sheep.Save(ctx, models.Sheep{ID: "s2", UserID: "u1", BreederID: "BRD-2", TagID: "HAM-002"}))
}

func TestLoginPersistsUserWithoutHashAndRestores(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.env")
	repos := repository.NewSet(store.NewMemory())
	seed(t, repos)

	m := NewManager(settings.NewFile(path), repos, nil)
	s, err := m.Login(ctx, sofiane)
	require.NoError(t, err)
	assert.Empty(t, s.User.PasswordHash)
	_, err = m.SwitchBreeder(ctx, "BRD-1")
	require.NoError(t, err)

	raw, ok, err := settings.NewFile(path).Get(ctx, settings.KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, raw, "secret")

	restarted := NewManager(settings.NewFile(path), repos, nil)
	require.NoError(t, restarted.Restore(ctx))
	cur := restarted.Current()
	require.True(t, cur.LoggedIn())
	assert.Equal(t, "u1", cur.User.ID)
	assert.Equal(t, models.Scope{UserID: "u1", BreederID: "BRD-1"}, cur.Scope())
}

func TestRestoreDropsCorruptUser(t *testing.T) {
	ctx := context.Background()
	st := settings.NewMemory()
	require.NoError(t, st.Set(ctx, settings.KeyUser, "{not json"))

	m := NewManager(st, repository.NewSet(store.NewMemory()), nil)
	require.NoError(t, m.Restore(ctx))
	assert.False(t, m.Current().LoggedIn())

	_, ok, err := st.Get(ctx, settings.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSwitchBreederChecksOwnership(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(store.NewMemory())
	seed(t, repos)
	m := NewManager(settings.NewMemory(), repos, nil)

	_, err := m.SwitchBreeder(ctx, "BRD-1")
	assert.ErrorIs(t, err, models.ErrNoActiveUser)

	_, err = m.Login(ctx, sofiane)
	require.NoError(t, err)

	_, err = m.SwitchBreeder(ctx, "BRD-X")
	assert.ErrorIs(t, err, models.ErrNotFound)

	s, err := m.SwitchBreeder(ctx, "BRD-2")
	require.NoError(t, err)
	assert.Equal(t, "BRD-2", s.BreederID)

	s, err = m.SwitchBreeder(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, s.BreederID)

	_, err = m.RequireBreeder()
	assert.ErrorIs(t, err, models.ErrNoActiveBreeder)
}

func TestRefreshFollowsScope(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(store.NewMemory())
	seed(t, repos)
	m := NewManager(settings.NewMemory(), repos, nil)
	_, err := m.Login(ctx, sofiane)
	require.NoError(t, err)

	v, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Breeders, 2)
	assert.Len(t, v.Sheep, 2)

	_, err = m.SwitchBreeder(ctx, "BRD-2")
	require.NoError(t, err)
	v, err = m.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, v.Sheep, 1)
	assert.Equal(t, "HAM-002", v.Sheep[0].TagID)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(store.NewMemory())
	seed(t, repos)
	st := settings.NewMemory()
	m := NewManager(st, repos, nil)
	_, err := m.Login(ctx, sofiane)
	require.NoError(t, err)
	_, err = m.SwitchBreeder(ctx, "BRD-1")
	require.NoError(t, err)
	_, err = m.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.Current().LoggedIn())
	assert.Empty(t, m.View().Sheep)
	for _, key := range []string{settings.KeyUser, settings.KeyBreederID} {
		_, ok, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	_, err = m.Refresh(ctx)
	assert.ErrorIs(t, err, models.ErrNoActiveUser)
}

// brokenSettings fails every delete.
type brokenSettings struct {
	*settings.Memory
}

func (brokenSettings) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestLogoutClearsMemoryWhenSettingsFail(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(store.NewMemory())
	seed(t, repos)
	m := NewManager(brokenSettings{settings.NewMemory()}, repos, nil)
	_, err := m.Login(ctx, sofiane)
	require.NoError(t, err)
	_, err = m.Refresh(ctx)
	require.NoError(t, err)

	err = m.Logout(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear session user")
	assert.Contains(t, err.Error(), "clear session breeder")
	assert.False(t, m.Current().LoggedIn())
	assert.Empty(t, m.View().Sheep)
	_, err = m.RequireUser()
	assert.ErrorIs(t, err, models.ErrNoActiveUser)
}

// gateStore blocks the first sheep scan until released.
type gateStore struct {
	*store.Memory
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) GetAll(ctx context.Context, table store.Table) ([][]byte, error) {
	if table == store.Sheep && g.entered != nil {
		close(g.entered)
		g.entered = nil
		<-g.release
	}
	return g.Memory.GetAll(ctx, table)
}

func TestRefreshStartedBeforeLogoutIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seed(t, repository.NewSet(mem))

	gate := &gateStore{Memory: mem, entered: make(chan struct{}), release: make(chan struct{})}
	entered := gate.entered
	m := NewManager(settings.NewMemory(), repository.NewSet(gate), nil)
	_, err := m.Login(ctx, sofiane)
	require.NoError(t, err)

	type result struct {
		v   View
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := m.Refresh(ctx)
		done <- result{v, err}
	}()

	<-entered
	require.NoError(t, m.Logout(ctx))
	close(gate.release)

	res := <-done
	require.NoError(t, res.err)
	assert.Empty(t, res.v.Sheep)
	assert.Empty(t, m.View().Sheep)
}

func TestRefreshStartedBeforeInvalidateIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seed(t, repository.NewSet(mem))

	gate := &gateStore{Memory: mem, entered: make(chan struct{}), release: make(chan struct{})}
	entered := gate.entered
	m := NewManager(settings.NewMemory(), repository.NewSet(gate), nil)
	_, err := m.Login(ctx, sofiane)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := m.Refresh(ctx)
		done <- err
	}()

	<-entered
	m.Invalidate()
	close(gate.release)
	require.NoError(t, <-done)
	assert.Empty(t, m.View().Sheep, "view loaded before the write is dropped")

	v, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Sheep, 2)
}
