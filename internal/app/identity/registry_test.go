package identity

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presencehub/internal/app/user"
)

func TestRegister(t *testing.T) {
	r := NewRegistry()

	alice, err := r.Register("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup(alice.ID)
	require.True(t, ok)
	assert.Equal(t, alice, got)
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("")
	require.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, 0, r.Len())
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("Alice")
	require.NoError(t, err)

	_, err = r.Register("Alice")

	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Alice", dup.Name)
	assert.Equal(t, 1, r.Len(), "failed registration must not mutate the registry")
}

func TestRegisterIsCaseSensitive(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("alice")
	require.NoError(t, err)

	_, err = r.Register("Alice")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestNameReusableAfterUnregisterWithFreshID(t *testing.T) {
	r := NewRegistry()

	first, err := r.Register("Alice")
	require.NoError(t, err)

	r.Unregister(first)
	assert.Equal(t, 0, r.Len())

	second, err := r.Register("Alice")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()

	alice, err := r.Register("Alice")
	require.NoError(t, err)

	r.Unregister(alice)
	r.Unregister(alice)
	r.Unregister(user.User{ID: "never-registered", Name: "Ghost"})

	assert.Equal(t, 0, r.Len())
}

func TestUnregisterStaleRecordKeepsNewOwner(t *testing.T) {
	r := NewRegistry()

	old, err := r.Register("Alice")
	require.NoError(t, err)
	r.Unregister(old)

	current, err := r.Register("Alice")
	require.NoError(t, err)

	r.Unregister(old)

	_, err = r.Register("Alice")
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)

	got, ok := r.Lookup(current.ID)
	require.True(t, ok)
	assert.Equal(t, current, got)
}

func TestUnregisterUsesIDNotName(t *testing.T) {
	r := NewRegistry()

	alice, err := r.Register("Alice")
	require.NoError(t, err)

	r.Unregister(user.User{ID: "other-id", Name: "Alice"})
	assert.Equal(t, 1, r.Len())

	r.Unregister(user.User{ID: alice.ID, Name: "renamed-by-client"})
	assert.Equal(t, 0, r.Len())
}

func TestRegisterRetriesIDCollision(t *testing.T) {
	r := NewRegistry()

	ids := []string{"same", "same", "fresh"}
	r.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	a, err := r.Register("A")
	require.NoError(t, err)
	b, err := r.Register("B")
	require.NoError(t, err)

	assert.Equal(t, "same", a.ID)
	assert.Equal(t, "fresh", b.ID)
}

func TestConcurrentRegisterSameName(t *testing.T) {
	r := NewRegistry()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Register("Alice"); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, r.Len())
}

func TestConcurrentRegisterDistinctNames(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Register(fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}
