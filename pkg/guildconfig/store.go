// Package guildconfig is the per-guild configuration document store.
//
// All documents live in memory. Every mutation marshals the whole guild map and
// writes it to the backend; when that write fails the mutation is rolled back
// and a StorageError is returned. Mutations of one guild are serialised by a
// per-guild lock, so concurrent read-modify-write cycles never lose updates.
package guildconfig

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// ChangeKind names what happened to a document.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangePatched ChangeKind = "patched"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is delivered to subscribers after a mutation was persisted.
// Config is nil for deletions.
type Change struct {
	Kind    ChangeKind          `json:"kind"`
	GuildID string              `json:"guildId"`
	Config  *models.GuildConfig `json:"config,omitempty"`
	At      time.Time           `json:"at"`
}

// Store holds every guild document.
type Store struct {
	backend database.Backend

	mu     sync.Mutex
	guilds map[string]*models.GuildConfig

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	subsMu sync.RWMutex
	subs   map[int]func(Change)
	nextID int

	now func() time.Time
}

// Open loads the persisted snapshot from backend. Malformed data is logged and
// the store starts empty; an unreadable backend is a StorageError.
func Open(ctx context.Context, backend database.Backend) (*Store, error) {
	s := &Store{
		backend: backend,
		guilds:  make(map[string]*models.GuildConfig),
		locks:   make(map[string]*sync.Mutex),
		subs:    make(map[int]func(Change)),
		now:     time.Now,
	}

	data, err := backend.Load(ctx)
	if err != nil {
		return nil, errors.Storage("load", err)
	}
	s.guilds = decodeSnapshot(data)

	logger.System(fmt.Sprintf("Configuraciones cargadas desde %s: %d servidores", backend.Name(), len(s.guilds)), "Store")
	return s, nil
}

func decodeSnapshot(data []byte) map[string]*models.GuildConfig {
	out := make(map[string]*models.GuildConfig)
	if len(data) == 0 {
		return out
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn(fmt.Sprintf("Datos de configuración corruptos, se inicia vacío: %v", err), "Store")
		return out
	}

	for guildID, doc := range raw {
		// Decoding over the defaults backfills fields added after the document was written.
		cfg := models.DefaultGuildConfig()
		if err := json.Unmarshal(doc, cfg); err != nil {
			logger.Warn(fmt.Sprintf("Configuración del servidor %s ilegible, se descarta: %v", guildID, err), "Store")
			continue
		}
		cfg.SchemaVersion = models.SchemaVersion
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			logger.Warn(fmt.Sprintf("Configuración del servidor %s inválida: %v", guildID, err), "Store")
		}
		out[guildID] = cfg
	}
	return out
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Backend returns the persistence backend.
func (s *Store) Backend() database.Backend {
	return s.backend
}

func (s *Store) guildLock(guildID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[guildID] = l
	}
	return l
}

// current returns the stored document or nil. Callers hold the guild lock.
func (s *Store) current(guildID string) *models.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guilds[guildID]
}

// commit replaces (or removes, when next is nil) the document and persists the
// snapshot. On a failed write the previous document is restored.
func (s *Store) commit(ctx context.Context, guildID string, next *models.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.guilds[guildID]
	if next == nil {
		delete(s.guilds, guildID)
	} else {
		s.guilds[guildID] = next
	}

	data, err := json.Marshal(s.guilds)
	if err == nil {
		err = s.backend.Save(ctx, data)
	}
	if err != nil {
		if existed {
			s.guilds[guildID] = prev
		} else {
			delete(s.guilds, guildID)
		}
		return errors.Storage("save", err)
	}
	return nil
}

// getLocked returns a private copy of the document, creating and persisting
// the default one when the guild has none.
func (s *Store) getLocked(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if cfg := s.current(guildID); cfg != nil {
		return cfg.Clone(), nil
	}

	cfg := models.DefaultGuildConfig()
	if err := s.commit(ctx, guildID, cfg); err != nil {
		return nil, err
	}
	s.notify(Change{Kind: ChangeCreated, GuildID: guildID, Config: cfg.Clone(), At: s.now()})
	return cfg.Clone(), nil
}

// Get returns the guild document, creating it with defaults on first access.
func (s *Store) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	l := s.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	return s.getLocked(ctx, guildID)
}

// Peek returns a copy of the guild document, or the defaults when the guild has
// none, without persisting anything.
func (s *Store) Peek(guildID string) *models.GuildConfig {
	if cfg := s.current(guildID); cfg != nil {
		return cfg.Clone()
	}
	return models.DefaultGuildConfig()
}

// Exists reports whether a document is stored for guildID.
func (s *Store) Exists(guildID string) bool {
	return s.current(guildID) != nil
}

// Patch replaces every top-level field named in fields.
func (s *Store) Patch(ctx context.Context, guildID string, fields map[string]any) (*models.GuildConfig, error) {
	return s.mutate(ctx, guildID, func(cur *models.GuildConfig) (*models.GuildConfig, error) {
		return mergeFields(cur, fields)
	})
}

// PatchSection merges fields one level deep into the named section.
func (s *Store) PatchSection(ctx context.Context, guildID, section string, fields map[string]any) (*models.GuildConfig, error) {
	if !models.IsSection(section) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return s.mutate(ctx, guildID, func(cur *models.GuildConfig) (*models.GuildConfig, error) {
		return mergeSection(cur, section, fields)
	})
}

// Update runs fn on a copy of the document under the guild lock and commits the
// result. An error from fn aborts the update and is returned unchanged.
func (s *Store) Update(ctx context.Context, guildID string, fn func(*models.GuildConfig) error) (*models.GuildConfig, error) {
	return s.mutate(ctx, guildID, func(cur *models.GuildConfig) (*models.GuildConfig, error) {
		if err := fn(cur); err != nil {
			return nil, err
		}
		cur.Normalize()
		if err := cur.Validate(); err != nil {
			return nil, err
		}
		return cur, nil
	})
}

func (s *Store) mutate(ctx context.Context, guildID string, apply func(*models.GuildConfig) (*models.GuildConfig, error)) (*models.GuildConfig, error) {
	l := s.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	cur, err := s.getLocked(ctx, guildID)
	if err != nil {
		return nil, err
	}

	next, err := apply(cur)
	if err != nil {
		return nil, err
	}
	next.SchemaVersion = models.SchemaVersion

	if err := s.commit(ctx, guildID, next); err != nil {
		return nil, err
	}
	s.notify(Change{Kind: ChangePatched, GuildID: guildID, Config: next.Clone(), At: s.now()})
	return next.Clone(), nil
}

// Delete removes the guild document. Deleting an absent guild is a no-op.
func (s *Store) Delete(ctx context.Context, guildID string) error {
	l := s.guildLock(guildID)
	l.Lock()
	defer l.Unlock()

	if s.current(guildID) == nil {
		return nil
	}
	if err := s.commit(ctx, guildID, nil); err != nil {
		return err
	}
	s.notify(Change{Kind: ChangeDeleted, GuildID: guildID, At: s.now()})
	return nil
}

// All returns a copy of every stored document keyed by guild ID.
func (s *Store) All() map[string]*models.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*models.GuildConfig, len(s.guilds))
	for id, cfg := range s.guilds {
		out[id] = cfg.Clone()
	}
	return out
}

// GuildIDs returns the stored guild IDs in ascending order.
func (s *Store) GuildIDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.guilds))
	for id := range s.guilds {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.guilds)
}

// Warnings returns the warnings of userID, oldest first.
func (s *Store) Warnings(ctx context.Context, guildID, userID string) ([]models.Warning, error) {
	cfg := s.Peek(guildID)
	return cfg.Warnings[userID], nil
}

// AddWarning appends w to the warnings of userID and returns the stored warning
// together with the member's new warning count. When another warning of the
// member already has the same ID, the ID is bumped past the newest one.
func (s *Store) AddWarning(ctx context.Context, guildID, userID string, w models.Warning) (models.Warning, int, error) {
	var count int
	_, err := s.Update(ctx, guildID, func(cfg *models.GuildConfig) error {
		list := cfg.Warnings[userID]
		if n := len(list); n > 0 {
			last, _ := strconv.ParseInt(list[n-1].ID, 10, 64)
			id, _ := strconv.ParseInt(w.ID, 10, 64)
			if id <= last {
				w.ID = strconv.FormatInt(last+1, 10)
			}
		}
		cfg.Warnings[userID] = append(list, w)
		count = len(cfg.Warnings[userID])
		return nil
	})
	if err != nil {
		return models.Warning{}, 0, err
	}
	return w, count, nil
}

// RecordWarning is AddWarning without the count, used by the effect executor.
func (s *Store) RecordWarning(ctx context.Context, guildID, userID string, w models.Warning) error {
	_, _, err := s.AddWarning(ctx, guildID, userID, w)
	return err
}

// ClearWarnings removes every warning of userID and returns how many there were.
func (s *Store) ClearWarnings(ctx context.Context, guildID, userID string) (int, error) {
	if len(s.Peek(guildID).Warnings[userID]) == 0 {
		return 0, nil
	}

	var removed int
	_, err := s.Update(ctx, guildID, func(cfg *models.GuildConfig) error {
		removed = len(cfg.Warnings[userID])
		delete(cfg.Warnings, userID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Leaderboard returns the top n members of the guild by XP.
func (s *Store) Leaderboard(ctx context.Context, guildID string, n int) ([]leveling.Entry, error) {
	cfg := s.Peek(guildID)
	return leveling.Leaderboard(cfg.Leveling.Users, n), nil
}

// Subscribe registers fn for every persisted change and returns a function
// that removes it. fn runs on the mutating goroutine while the guild lock is
// still held, so it must not mutate the same guild.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(c Change) {
	s.subsMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range subs {
		func() {
			defer errors.RecoverMiddleware()()
			fn(c)
		}()
	}
}
