/*
Package pow implements an optional Proof-of-Work gate for name registration.

A client fetches a nonce, searches for a counter such that
sha256(nonce + counter) starts with Difficulty hex zeros, and trades the solution
for a short-lived, single-use proof token that it presents when registering.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenHeaderKey is the HTTP header carrying the proof token.
	TokenHeaderKey = "X-PoW-Token"

	// TokenQueryKey is the query parameter alternative to TokenHeaderKey.
	TokenQueryKey = "pow_token"

	// ProofTokenDuration is how long a proof token stays valid.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is how long a challenge nonce stays valid.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already used nonces.
	ErrNonceInvalid = errors.New("pow: nonce expired or invalid")

	// ErrProofInsufficient is returned when the hash misses the difficulty target.
	ErrProofInsufficient = errors.New("pow: proof does not meet difficulty requirement")
)

// Manager issues challenges and proof tokens. It is safe for concurrent use.
type Manager struct {
	difficulty int

	mu         sync.Mutex
	nonceStore map[string]time.Time
	tokenStore map[string]time.Time

	now func() time.Time
}

// NewManager creates a Manager for the given difficulty. A difficulty of zero
// disables the gate. The expiry sweep stops when ctx is done.
func NewManager(ctx context.Context, difficulty int) *Manager {
	m := &Manager{
		difficulty: difficulty,
		nonceStore: make(map[string]time.Time),
		tokenStore: make(map[string]time.Time),
		now:        time.Now,
	}

	if m.Enabled() {
		go m.sweepLoop(ctx)
	}

	return m
}

// Enabled reports whether registration requires a proof token.
func (m *Manager) Enabled() bool {
	return m.difficulty > 0
}

// Difficulty returns the number of leading hex zeros required.
func (m *Manager) Difficulty() int {
	return m.difficulty
}

// GenerateNonce stores and returns a fresh challenge nonce.
func (m *Manager) GenerateNonce() string {
	nonce := uuid.NewString()

	m.mu.Lock()
	m.nonceStore[nonce] = m.now().Add(NonceExpiryDuration)
	m.mu.Unlock()

	return nonce
}

// Meets reports whether sha256(nonce+counter) has difficulty leading hex zeros.
func Meets(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

// ValidateProof checks a solution and, on success, consumes the nonce and returns
// a proof token.
func (m *Manager) ValidateProof(nonce, counter string) (string, error) {
	if !Meets(nonce, counter, m.difficulty) {
		return "", ErrProofInsufficient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.nonceStore[nonce]
	if !ok || m.now().After(expiry) {
		return "", ErrNonceInvalid
	}
	delete(m.nonceStore, nonce)

	token := uuid.NewString()
	m.tokenStore[token] = m.now().Add(ProofTokenDuration)

	return token, nil
}

func proofToken(r *http.Request) string {
	if token := r.Header.Get(TokenHeaderKey); token != "" {
		return token
	}
	return r.URL.Query().Get(TokenQueryKey)
}

// CheckProofToken reports whether r carries a live proof token without spending it.
func (m *Manager) CheckProofToken(r *http.Request) bool {
	token := proofToken(r)
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokenStore[token]
	return ok && !m.now().After(expiry)
}

// ConsumeProofToken validates and burns the proof token carried by r.
func (m *Manager) ConsumeProofToken(r *http.Request) bool {
	token := proofToken(r)
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokenStore[token]
	if !ok {
		return false
	}
	delete(m.tokenStore, token)

	return !m.now().After(expiry)
}

func (m *Manager) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for nonce, expiry := range m.nonceStore {
		if now.After(expiry) {
			delete(m.nonceStore, nonce)
		}
	}

	for token, expiry := range m.tokenStore {
		if now.After(expiry) {
			delete(m.tokenStore, token)
		}
	}
}
