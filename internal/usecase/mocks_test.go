//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// mockTxManager runs the callback directly; the in-memory repos have no
// transaction semantics to enforce.
type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// ---------------- users ----------------

type memUserRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, _ repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if prev, ok := m.store[u.TelegramID]; ok {
		// Mirrors the store: a nil incoming expiry keeps the stored one.
		if cp.PremiumUntil == nil {
			cp.PremiumUntil = prev.PremiumUntil
		}
		cp.IsAdmin = prev.IsAdmin
		cp.RegisteredAt = prev.RegisteredAt
	}
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) SetPremiumUntil(ctx context.Context, _ repository.Tx, tgID int64, until *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PremiumUntil = until
	return nil
}

func (m *memUserRepo) SetAdmin(ctx context.Context, _ repository.Tx, tgID int64, isAdmin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (m *memUserRepo) ListIDs(ctx context.Context, _ repository.Tx) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memUserRepo) CountAdmins(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) CountActivePremium(ctx context.Context, _ repository.Tx, now time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.PremiumUntil != nil && u.PremiumUntil.After(now) {
			n++
		}
	}
	return n, nil
}

// ---------------- links ----------------

type memLinkRepo struct {
	mu    sync.RWMutex
	store map[string]*model.LinkCode

	// forcedCollisions makes the next N inserts fail as duplicates.
	forcedCollisions int
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{store: make(map[string]*model.LinkCode)}
}

func (m *memLinkRepo) Insert(ctx context.Context, _ repository.Tx, link *model.LinkCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forcedCollisions > 0 {
		m.forcedCollisions--
		return domain.ErrAlreadyExists
	}
	if _, ok := m.store[link.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *link
	m.store[link.Code] = &cp
	return nil
}

func (m *memLinkRepo) FindByCode(ctx context.Context, _ repository.Tx, code string) (*model.LinkCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[code]
	if !ok || l.Removed {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLinkRepo) MarkUsed(ctx context.Context, _ repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[code]
	if !ok {
		return domain.ErrNotFound
	}
	l.Uses++
	now := time.Now()
	l.LastUsedAt = &now
	return nil
}

func (m *memLinkRepo) CountLinks(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.store {
		if !l.Removed {
			n++
		}
	}
	return n, nil
}

// ---------------- content ----------------

type memContentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ContentItem
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{store: make(map[string]*model.ContentItem)}
}

func (m *memContentRepo) Save(ctx context.Context, _ repository.Tx, item *model.ContentItem) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.UniqueID != "" {
		for _, it := range m.store {
			if it.UniqueID == item.UniqueID {
				return it.ID, nil
			}
		}
	}
	cp := *item
	m.store[item.ID] = &cp
	return item.ID, nil
}

func (m *memContentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memContentRepo) CountFiles(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// ---------------- batches ----------------

type memBatchRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Batch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{store: make(map[string]*model.Batch)}
}

func (m *memBatchRepo) Save(ctx context.Context, _ repository.Tx, b *model.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[b.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *b
	cp.Items = append([]model.DeliveryItem(nil), b.Items...)
	m.store[b.ID] = &cp
	return nil
}

func (m *memBatchRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	cp.Items = append([]model.DeliveryItem(nil), b.Items...)
	return &cp, nil
}

func (m *memBatchRepo) CountBatches(ctx context.Context, _ repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// ---------------- tokens ----------------

type memTokenRepo struct {
	mu    sync.Mutex
	store map[string]*model.RedemptionToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{store: make(map[string]*model.RedemptionToken)}
}

func (m *memTokenRepo) Insert(ctx context.Context, _ repository.Tx, t *model.RedemptionToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *t
	m.store[t.Token] = &cp
	return nil
}

func (m *memTokenRepo) FindByToken(ctx context.Context, _ repository.Tx, token string) (*model.RedemptionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

// ClaimUnused is the compare-and-set step; the mutex gives the same
// single-winner guarantee the conditional UPDATE does.
func (m *memTokenRepo) ClaimUnused(ctx context.Context, _ repository.Tx, token string, userID int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[token]
	if !ok || t.UsedBy != nil {
		return false, nil
	}
	t.UsedBy = &userID
	t.UsedAt = &at
	return true, nil
}

func (m *memTokenRepo) CountTokens(ctx context.Context, _ repository.Tx) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := 0
	for _, t := range m.store {
		if t.UsedBy != nil {
			used++
		}
	}
	return len(m.store), used, nil
}

// ---------------- force channels ----------------

type memChannelRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.ForceChannel
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{store: make(map[int64]*model.ForceChannel)}
}

func (m *memChannelRepo) Save(ctx context.Context, _ repository.Tx, ch *model.ForceChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ch
	m.store[ch.ChannelID] = &cp
	return nil
}

func (m *memChannelRepo) Remove(ctx context.Context, _ repository.Tx, channelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[channelID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, channelID)
	return nil
}

func (m *memChannelRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.ForceChannel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.ForceChannel, 0, len(m.store))
	for _, ch := range m.store {
		cp := *ch
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

// ---------------- settings ----------------

type memSettingsRepo struct {
	mu    sync.RWMutex
	store map[string]string
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{store: make(map[string]string)}
}

func (m *memSettingsRepo) Set(ctx context.Context, _ repository.Tx, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *memSettingsRepo) Get(ctx context.Context, _ repository.Tx, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[key], nil
}

func (m *memSettingsRepo) Delete(ctx context.Context, _ repository.Tx, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

// ---------------- batch sessions ----------------

type memSessionRepo struct {
	mu    sync.Mutex
	store map[int64]*model.BatchSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[int64]*model.BatchSession)}
}

func (m *memSessionRepo) Put(ctx context.Context, s *model.BatchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.FileIDs = append([]string(nil), s.FileIDs...)
	m.store[s.AdminID] = &cp
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, adminID int64) (*model.BatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[adminID]
	if !ok {
		return nil, domain.ErrNoActiveSession
	}
	cp := *s
	cp.FileIDs = append([]string(nil), s.FileIDs...)
	return &cp, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, adminID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, adminID)
	return nil
}

// ---------------- membership adapter ----------------

// fakeMembership answers membership queries from a fixed table. Channels
// absent from the table report errFor (if set) or NotMember.
type fakeMembership struct {
	mu       sync.Mutex
	statuses map[int64]model.MembershipStatus
	errFor   map[int64]error
	admins   map[int64]map[int64]bool // channelID -> userID -> admin
	calls    int
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		statuses: make(map[int64]model.MembershipStatus),
		errFor:   make(map[int64]error),
		admins:   make(map[int64]map[int64]bool),
	}
}

func (f *fakeMembership) ChatMember(ctx context.Context, channelID, userID int64) (model.MembershipStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errFor[channelID]; ok {
		return model.MembershipUnknown, err
	}
	if st, ok := f.statuses[channelID]; ok {
		return st, nil
	}
	return model.MembershipNotMember, nil
}

func (f *fakeMembership) IsChannelAdmin(ctx context.Context, channelID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errFor[channelID]; ok {
		return false, err
	}
	return f.admins[channelID][userID], nil
}

// ---------------- messenger adapter ----------------

type sentMessage struct {
	to   int64
	text string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeMessenger) SendMessage(ctx context.Context, telegramID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to: telegramID, text: text})
	return nil
}

func (f *fakeMessenger) SendButtons(ctx context.Context, telegramID int64, text string, _ [][]adapter.InlineButton) error {
	return f.SendMessage(ctx, telegramID, text)
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
