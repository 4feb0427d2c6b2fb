package userflow

import (
	"context"
	"sync"
	"testing"

	"github.com/userflow-go/userflow/password"
)

var testSigningKey = []byte("engine-test-signing-key")

type hostUser struct {
	ID       string
	Username string
	Email    string
	Hash     string
	Verified bool
}

// hostStore is an in-memory stand-in for the host's user database.
type hostStore struct {
	mu            sync.Mutex
	users         []*hostUser
	insertCalls   int
	lastLink      string
	notifications int
	insertOK      bool
	notifyOK      bool
}

func newHostStore() *hostStore {
	return &hostStore{insertOK: true, notifyOK: true}
}

func (h *hostStore) add(user *hostUser) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users = append(h.users, user)
}

func (h *hostStore) findByIdentifier(identifier string) *hostUser {
	for _, u := range h.users {
		if u.Username == identifier || u.Email == identifier {
			return u
		}
	}
	return nil
}

func (h *hostStore) capabilities() Capabilities {
	return Capabilities{
		ResolveByIdentifier: func(_ context.Context, identifier string) (any, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if u := h.findByIdentifier(identifier); u != nil {
				return u, nil
			}
			return nil, nil
		},
		ResolveByResetKey: func(_ context.Context, resetKey string) (any, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, u := range h.users {
				if u.Email == resetKey {
					return u, nil
				}
			}
			return nil, nil
		},
		GetResetKey: func(_ context.Context, user any) (string, error) {
			return user.(*hostUser).Email, nil
		},
		GetCredential: func(_ context.Context, user any) (string, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return user.(*hostUser).Hash, nil
		},
		SetCredential: func(_ context.Context, user any, hash string) (bool, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			user.(*hostUser).Hash = hash
			return true, nil
		},
		InsertUser: func(_ context.Context, data RegistrationData) (bool, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.insertCalls++
			if !h.insertOK {
				return false, nil
			}
			h.users = append(h.users, &hostUser{
				Username: data.Username,
				Email:    data.Email,
				Hash:     data.PasswordHash,
			})
			return true, nil
		},
		SendResetNotification: func(_ context.Context, _ any, link string) (bool, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notifications++
			h.lastLink = link
			return h.notifyOK, nil
		},
		GetVerificationState: func(_ context.Context, user any) (bool, error) {
			return user.(*hostUser).Verified, nil
		},
		SetVerificationState: func(_ context.Context, user any, verified bool) error {
			user.(*hostUser).Verified = verified
			return nil
		},
	}
}

func testEngineConfig() Config {
	cfg := defaultConfig()
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestEngine(t *testing.T, host *hostStore, mutate func(*Builder)) *Engine {
	t.Helper()

	b := New().
		WithConfig(testEngineConfig()).
		WithCapabilities(host.capabilities()).
		WithSigningKey(testSigningKey)
	if mutate != nil {
		mutate(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func mustHasher(t *testing.T) *password.Argon2 {
	t.Helper()

	cfg := testEngineConfig().Password
	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
		MinLength:   cfg.MinLength,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return hasher
}

func registerTestUser(t *testing.T, engine *Engine, host *hostStore, username, email, password string) *hostUser {
	t.Helper()

	hash, err := engine.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	ok, err := engine.Register(context.Background(), RegistrationData{
		Username:     username,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !ok {
		t.Fatalf("Register returned false for %s", username)
	}

	user := host.findByIdentifier(username)
	if user == nil {
		t.Fatalf("registered user %s not found in host store", username)
	}
	return user
}
