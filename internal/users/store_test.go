package users

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/Aidin1998/usersapi/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return NewStore(zaptest.NewLogger(t), opts...)
}

func TestNewStoreSeeds(t *testing.T) {
	s := newTestStore(t)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, User{ID: 1, Name: "John", Email: "john@example.com"}, list[0])
	assert.Equal(t, User{ID: 2, Name: "Jane", Email: "jane@example.com"}, list[1])
}

func TestStoreGet(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)

	_, err = s.Get(42)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestStoreCreateAssignsLengthPlusOne(t *testing.T) {
	s := newTestStore(t)
	before := s.Len()

	u, err := s.Create(User{ID: 99, Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(before+1), u.ID)

	got, err := s.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestStoreCreateRequiresNameAndEmail(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(User{Name: "Alice"})
	assert.True(t, errors.Is(err, ErrNameEmailRequired))
	_, err = s.Create(User{Email: "a@x.com"})
	assert.True(t, errors.Is(err, ErrNameEmailRequired))
	assert.Equal(t, 2, s.Len())
}

func TestStoreIDsNeverCollideAfterDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Delete(1))
	u, err := s.Create(User{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	ids := map[int64]bool{}
	for _, rec := range s.List() {
		assert.False(t, ids[rec.ID], "duplicate id %d", rec.ID)
		ids[rec.ID] = true
	}
}

func TestStoreCreateReusesFreeLengthPlusOne(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Delete(2))
	u, err := s.Create(User{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)

	got, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestStoreCreateKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t, WithSeed(
		User{ID: 1, Name: "A", Email: "a@x"},
		User{ID: 2, Name: "B", Email: "b@x"},
		User{ID: 3, Name: "C", Email: "c@x"},
		User{ID: 4, Name: "D", Email: "d@x"},
	))
	require.NoError(t, s.Delete(2))
	require.NoError(t, s.Delete(3))

	u, err := s.Create(User{Name: "E", Email: "e@x"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	var order []int64
	for _, rec := range s.List() {
		order = append(order, rec.ID)
	}
	assert.Equal(t, []int64{1, 4, 3}, order)
}

func TestStoreReplaceForcesID(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Replace(1, User{ID: 7, Name: "X", Email: "y@z.com", Extra: map[string]json.RawMessage{"age": json.RawMessage("3")}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "X", u.Name)
	assert.JSONEq(t, "3", string(u.Extra["age"]))

	_, err = s.Replace(42, User{Name: "X", Email: "y@z.com"})
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestStoreReplaceDiscardsOldExtras(t *testing.T) {
	s := newTestStore(t, WithSeed(User{ID: 1, Name: "A", Email: "a@x", Extra: map[string]json.RawMessage{"role": json.RawMessage(`"admin"`)}}))

	u, err := s.Replace(1, User{Name: "B", Email: "b@x"})
	require.NoError(t, err)
	assert.Empty(t, u.Extra)
}

func TestStoreMerge(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Merge(1, Fields{"name": json.RawMessage(`"OnlyName"`), "id": json.RawMessage("9"), "tag": json.RawMessage(`[1,2]`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "OnlyName", u.Name)
	assert.Equal(t, "john@example.com", u.Email)
	assert.JSONEq(t, `[1,2]`, string(u.Extra["tag"]))

	_, err = s.Merge(1, Fields{"email": json.RawMessage(`""`)})
	assert.True(t, errors.Is(err, ErrInvalidMerge))
	got, _ := s.Get(1)
	assert.Equal(t, "john@example.com", got.Email, "failed merge leaves record untouched")

	_, err = s.Merge(42, Fields{})
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Delete(1))
	_, err := s.Get(1)
	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.True(t, errors.Is(s.Delete(1), ErrUserNotFound))
	assert.Equal(t, 1, s.Len())
}

func TestStoreReturnsCopies(t *testing.T) {
	s := newTestStore(t)

	u, err := s.Create(User{Name: "A", Email: "a@x", Extra: map[string]json.RawMessage{"k": json.RawMessage(`1`)}})
	require.NoError(t, err)
	u.Extra["k"][0] = '9'
	u.Extra["other"] = json.RawMessage(`2`)

	got, _ := s.Get(u.ID)
	assert.JSONEq(t, "1", string(got.Extra["k"]))
	assert.NotContains(t, got.Extra, "other")
}

func TestStoreConcurrentCreates(t *testing.T) {
	s := newTestStore(t)

	const n = 64
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := s.Create(User{Name: "N", Email: "n@x"})
			if err == nil {
				ids <- u.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n+2, s.Len())
}
