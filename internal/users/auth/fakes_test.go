// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gatehouse/internal/platform/device"
	"github.com/taibuivan/gatehouse/internal/platform/sec"
	"github.com/taibuivan/gatehouse/internal/users/auth"
	"github.com/taibuivan/gatehouse/pkg/uuid"
)

const testSecret = "test-secret-with-at-least-32-bytes!!"

// # Clock

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// # Users

type memoryUsers struct {
	mu            sync.Mutex
	byID          map[string]*auth.User
	findByIDCalls int
	err           error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]*auth.User)}
}

func (store *memoryUsers) add(user *auth.User) *auth.User {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New()
	}
	store.byID[user.ID] = user
	return user
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.findByIDCalls++
	if store.err != nil {
		return nil, store.err
	}
	user, ok := store.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.err != nil {
		return nil, store.err
	}
	for _, user := range store.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New()
	}
	clone := *user
	store.byID[user.ID] = &clone
	return nil
}

func (store *memoryUsers) calls() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.findByIDCalls
}

// # Sessions

type memorySessions struct {
	mu            sync.Mutex
	clock         *testClock
	byID          map[string]*auth.Session
	findByIDCalls int
	err           error
}

func newMemorySessions(clock *testClock) *memorySessions {
	return &memorySessions{clock: clock, byID: make(map[string]*auth.Session)}
}

func (store *memorySessions) Create(_ context.Context, userID string, client device.Info, accessTTL, refreshTTL time.Duration) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	now := store.clock.Now()
	session := &auth.Session{
		ID:               uuid.New(),
		UserID:           userID,
		UserAgent:        client.UserAgent,
		IPAddress:        client.IP,
		DeviceType:       client.DeviceType,
		DeviceName:       client.DeviceName,
		OSName:           client.OSName,
		Status:           auth.SessionActive,
		AccessExpiresAt:  now.Add(accessTTL),
		RefreshExpiresAt: now.Add(refreshTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	store.byID[session.ID] = session
	clone := *session
	return &clone, nil
}

func (store *memorySessions) FindByID(_ context.Context, id string) (*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.findByIDCalls++
	if store.err != nil {
		return nil, store.err
	}
	session, ok := store.byID[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (store *memorySessions) FindByUser(_ context.Context, userID string) ([]*auth.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sessions := make([]*auth.Session, 0)
	for _, session := range store.byID {
		if session.UserID == userID {
			clone := *session
			sessions = append(sessions, &clone)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID > sessions[j].ID })
	return sessions, nil
}

func (store *memorySessions) Revoke(_ context.Context, id, reason string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, ok := store.byID[id]
	if !ok || session.Status == auth.SessionRevoked {
		return nil
	}
	now := store.clock.Now()
	session.Status = auth.SessionRevoked
	session.RevokedAt = &now
	session.RevokedReason = &reason
	return nil
}

func (store *memorySessions) ExtendAccess(_ context.Context, id string, accessTTL time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	session, ok := store.byID[id]
	if !ok || session.Status != auth.SessionActive {
		return nil
	}
	now := store.clock.Now()
	session.AccessExpiresAt = now.Add(accessTTL)
	if session.AccessExpiresAt.After(session.RefreshExpiresAt) {
		session.AccessExpiresAt = session.RefreshExpiresAt
	}
	session.LastActivityAt = &now
	return nil
}

func (store *memorySessions) get(id string) *auth.Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.byID[id]
}

func (store *memorySessions) calls() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.findByIDCalls
}

// # Revocation list

type memoryRevocations struct {
	mu      sync.Mutex
	markers map[string]time.Duration
	err     error
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{markers: make(map[string]time.Duration)}
}

func (list *memoryRevocations) MarkRevoked(_ context.Context, sessionID string, ttl time.Duration) error {
	list.mu.Lock()
	defer list.mu.Unlock()
	if list.err != nil {
		return list.err
	}
	if ttl > 0 {
		list.markers[sessionID] = ttl
	}
	return nil
}

func (list *memoryRevocations) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	list.mu.Lock()
	defer list.mu.Unlock()
	_, ok := list.markers[sessionID]
	return ok, nil
}

// # Pending signups

type memoryPending struct {
	mu      sync.Mutex
	records map[string]*auth.PendingSignup
}

func newMemoryPending() *memoryPending {
	return &memoryPending{records: make(map[string]*auth.PendingSignup)}
}

func (store *memoryPending) Save(_ context.Context, pending *auth.PendingSignup, _ time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *pending
	store.records[pending.Email] = &clone
	return nil
}

func (store *memoryPending) Find(_ context.Context, email string) (*auth.PendingSignup, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	pending, ok := store.records[email]
	if !ok {
		return nil, auth.ErrPendingSignupNotFound
	}
	clone := *pending
	return &clone, nil
}

func (store *memoryPending) Delete(_ context.Context, email string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.records, email)
	return nil
}

// # Code sender

type recordingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (sender *recordingSender) SendVerificationCode(_ context.Context, email, code string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.codes == nil {
		sender.codes = make(map[string]string)
	}
	sender.codes[email] = code
	return nil
}

func (sender *recordingSender) code(email string) string {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return sender.codes[email]
}

// # Fixture

var errStorage = errors.New("storage unavailable")

type fixture struct {
	clock       *testClock
	users       *memoryUsers
	sessions    *memorySessions
	revocations *memoryRevocations
	pending     *memoryPending
	sender      *recordingSender
	codec       *sec.TokenCodec
	service     *auth.Service
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	clock := newTestClock()
	codec, err := sec.NewTokenCodec(testSecret, sec.WithClock(clock.Now), sec.WithIssuer("gatehouse"))
	require.NoError(t, err)

	f := &fixture{
		clock:       clock,
		users:       newMemoryUsers(),
		sessions:    newMemorySessions(clock),
		revocations: newMemoryRevocations(),
		pending:     newMemoryPending(),
		sender:      &recordingSender{},
		codec:       codec,
	}

	f.service = auth.NewService(
		f.users,
		f.sessions,
		f.pending,
		f.revocations,
		codec,
		auth.Settings{
			AccessTTL:       15 * time.Minute,
			RefreshTTL:      30 * 24 * time.Hour,
			VerificationTTL: 15 * time.Minute,
			StrictSessions:  strict,
		},
		auth.WithClock(clock.Now),
		auth.WithCodeSender(f.sender),
	)

	return f
}

// activeUser stores an active account with the given password.
func (f *fixture) activeUser(t *testing.T, email, password string) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return f.users.add(&auth.User{
		Username:     "ada",
		Email:        email,
		PasswordHash: hash,
		Status:       auth.UserActive,
	})
}
