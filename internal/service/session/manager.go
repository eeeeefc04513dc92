// Package session holds the signed-in user and the selected breeder of this
// device, persisted across restarts in the settings store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/domain/models"
	"github.com/rahim112008/ovinmanager/internal/repository"
	"github.com/rahim112008/ovinmanager/internal/repository/settings"
)

// Session is an immutable snapshot of the current scope.
type Session struct {
	User      *models.User `json:"user"`
	BreederID string       `json:"breederId"`
}

// LoggedIn reports whether a user is signed in.
func (s Session) LoggedIn() bool { return s.User != nil }

// Scope returns the tenant boundary for workflow calls.
func (s Session) Scope() models.Scope {
	if s.User == nil {
		return models.Scope{}
	}
	return models.Scope{UserID: s.User.ID, BreederID: s.BreederID}
}

// View is the cached data shown for the current scope.
type View struct {
	Breeders   []models.Breeder          `json:"breeders"`
	Sheep      []models.Sheep            `json:"sheep"`
	Production []models.ProductionRecord `json:"production"`
	LoadedAt   time.Time                 `json:"loadedAt"`
}

// Manager owns the session state. All transitions go through it.
type Manager struct {
	mu         sync.RWMutex
	settings   settings.Store
	repos      *repository.Set
	logger     *zap.Logger
	current    Session
	view       View
	generation uint64
}

// NewManager builds an empty manager; call Restore to load persisted state.
func NewManager(store settings.Store, repos *repository.Set, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{settings: store, repos: repos, logger: logger}
}

// Restore loads the persisted user and breeder selection. A corrupt user
// entry is dropped rather than blocking start-up.
func (m *Manager) Restore(ctx context.Context) error {
	rawUser, ok, err := m.settings.Get(ctx, settings.KeyUser)
	if err != nil {
		return fmt.Errorf("read session user: %w", err)
	}
	breederID, _, err := m.settings.Get(ctx, settings.KeyBreederID)
	if err != nil {
		return fmt.Errorf("read session breeder: %w", err)
	}

	var restored Session
	if ok && rawUser != "" {
		var u models.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil || u.ID == "" {
			m.logger.Warn("discarding unreadable session user", zap.Error(err))
			if err := m.settings.Delete(ctx, settings.KeyUser); err != nil {
				return fmt.Errorf("clear session user: %w", err)
			}
		} else {
			restored.User = &u
			restored.BreederID = breederID
		}
	}

	m.mu.Lock()
	m.current = restored
	m.generation++
	m.mu.Unlock()

	if restored.User != nil {
		m.logger.Info("session restored", zap.String("user_id", restored.User.ID), zap.String("breeder_id", restored.BreederID))
	}
	return nil
}

// Current returns the session snapshot.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// RequireUser returns the session or ErrNoActiveUser.
func (m *Manager) RequireUser() (Session, error) {
	s := m.Current()
	if !s.LoggedIn() {
		return Session{}, models.ErrNoActiveUser
	}
	return s, nil
}

// RequireBreeder returns the session or an error when no breeder is selected.
func (m *Manager) RequireBreeder() (Session, error) {
	s, err := m.RequireUser()
	if err != nil {
		return Session{}, err
	}
	if s.BreederID == "" {
		return Session{}, models.ErrNoActiveBreeder
	}
	return s, nil
}

// Login makes user the active account. The password hash never reaches the
// settings store. A previous breeder selection survives only if the new user
// owns it.
func (m *Manager) Login(ctx context.Context, user models.User) (Session, error) {
	public := user.Public()
	raw, err := json.Marshal(public)
	if err != nil {
		return Session{}, fmt.Errorf("encode session user: %w", err)
	}
	if err := m.settings.Set(ctx, settings.KeyUser, string(raw)); err != nil {
		return Session{}, fmt.Errorf("persist session user: %w", err)
	}

	breederID := m.Current().BreederID
	if breederID != "" {
		b, ok, err := m.repos.Breeders.Get(ctx, breederID)
		if err != nil {
			return Session{}, err
		}
		if !ok || b.UserID != public.ID {
			breederID = ""
			if err := m.settings.Delete(ctx, settings.KeyBreederID); err != nil {
				return Session{}, fmt.Errorf("clear session breeder: %w", err)
			}
		}
	}

	m.mu.Lock()
	m.current = Session{User: &public, BreederID: breederID}
	m.view = View{}
	m.generation++
	s := m.current
	m.mu.Unlock()

	m.logger.Info("user logged in", zap.String("user_id", public.ID))
	return s, nil
}

// Logout clears the scope and the cached view, then the persisted settings.
// Refreshes started before the logout are discarded when they finish. The
// in-memory state is cleared even when the settings store fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = Session{}
	m.view = View{}
	m.generation++
	m.mu.Unlock()

	var errs []error
	if err := m.settings.Delete(ctx, settings.KeyUser); err != nil {
		errs = append(errs, fmt.Errorf("clear session user: %w", err))
	}
	if err := m.settings.Delete(ctx, settings.KeyBreederID); err != nil {
		errs = append(errs, fmt.Errorf("clear session breeder: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		m.logger.Error("user logged out, settings not cleared", zap.Error(err))
		return err
	}

	m.logger.Info("user logged out")
	return nil
}

// SwitchBreeder selects breederID, or every breeder of the user when empty.
func (m *Manager) SwitchBreeder(ctx context.Context, breederID string) (Session, error) {
	s, err := m.RequireUser()
	if err != nil {
		return Session{}, err
	}

	if breederID == "" {
		if err := m.settings.Delete(ctx, settings.KeyBreederID); err != nil {
			return Session{}, fmt.Errorf("clear session breeder: %w", err)
		}
	} else {
		b, ok, err := m.repos.Breeders.Get(ctx, breederID)
		if err != nil {
			return Session{}, err
		}
		if !ok || b.UserID != s.User.ID {
			return Session{}, fmt.Errorf("%w: breeder %s", models.ErrNotFound, breederID)
		}
		if err := m.settings.Set(ctx, settings.KeyBreederID, breederID); err != nil {
			return Session{}, fmt.Errorf("persist session breeder: %w", err)
		}
	}

	m.mu.Lock()
	m.current.BreederID = breederID
	m.generation++
	next := m.current
	m.mu.Unlock()

	m.logger.Info("breeder selected", zap.String("user_id", s.User.ID), zap.String("breeder_id", breederID))
	return next, nil
}

// Refresh reloads the view for the current scope. When the scope changes
// while loading, the stale result is dropped and the current view returned.
func (m *Manager) Refresh(ctx context.Context) (View, error) {
	m.mu.RLock()
	gen := m.generation
	s := m.current
	m.mu.RUnlock()

	if !s.LoggedIn() {
		return View{}, models.ErrNoActiveUser
	}
	scope := s.Scope()

	breeders, err := m.repos.Breeders.ListByUser(ctx, scope.UserID)
	if err != nil {
		return View{}, err
	}
	sheep, err := m.repos.Sheep.ListScope(ctx, scope)
	if err != nil {
		return View{}, err
	}
	production, err := m.repos.Production.ListScope(ctx, scope)
	if err != nil {
		return View{}, err
	}
	loaded := View{Breeders: breeders, Sheep: sheep, Production: production, LoadedAt: time.Now().UTC()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		m.logger.Debug("dropping stale refresh")
		return m.view, nil
	}
	m.view = loaded
	return loaded, nil
}

// View returns the last loaded view.
func (m *Manager) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Invalidate marks the cached view as outdated after a write.
// Refreshes already running are discarded.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.view = View{}
	m.generation++
	m.mu.Unlock()
}
