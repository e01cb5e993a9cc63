package secrets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeItem is an in-memory secret service item.
type fakeItem struct {
	attrs   map[string]string
	value   []byte
	deleted bool

	valueErr  error
	deleteErr error
	attrsErr  error
}

func (i *fakeItem) Value() ([]byte, error) {
	if i.valueErr != nil {
		return nil, i.valueErr
	}
	return i.value, nil
}

func (i *fakeItem) SetValue(value []byte, _ string) error {
	i.value = value
	return nil
}

func (i *fakeItem) Delete() error {
	if i.deleteErr != nil {
		return i.deleteErr
	}
	i.deleted = true
	return nil
}

func (i *fakeItem) Attributes() (map[string]string, error) {
	if i.attrsErr != nil {
		return nil, i.attrsErr
	}
	return i.attrs, nil
}

// fakeCollection is an in-memory secret service collection with injectable
// search failures.
type fakeCollection struct {
	items     []*fakeItem
	searchErr error
	createErr error
}

func matches(item *fakeItem, attrs map[string]string) bool {
	if item.deleted {
		return false
	}
	for k, v := range attrs {
		if item.attrs[k] != v {
			return false
		}
	}
	return true
}

func (c *fakeCollection) Search(attrs map[string]string) ([]Item, error) {
	if c.searchErr != nil {
		return nil, c.searchErr
	}

	var found []Item
	for _, item := range c.items {
		if matches(item, attrs) {
			found = append(found, item)
		}
	}
	return found, nil
}

func (c *fakeCollection) Create(_ string, attrs map[string]string, value []byte, _ string, _ bool) error {
	if c.createErr != nil {
		return c.createErr
	}

	c.items = append(c.items, &fakeItem{attrs: attrs, value: value})
	return nil
}

func (c *fakeCollection) live() []*fakeItem {
	var live []*fakeItem
	for _, item := range c.items {
		if !item.deleted {
			live = append(live, item)
		}
	}
	return live
}

func TestStoreThenRetrieve(t *testing.T) {
	col := &fakeCollection{}
	store := NewStore(col)

	require.NoError(t, store.Store("api_key", "sk-12345"))

	value, ok, err := store.Retrieve("api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sk-12345", value)
}

func TestStoreUpsertsInPlace(t *testing.T) {
	col := &fakeCollection{}
	store := NewStore(col)

	require.NoError(t, store.Store("api_key", "v1"))
	require.NoError(t, store.Store("api_key", "v2"))

	value, ok, err := store.Retrieve("api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", value)

	// Upsert must never create duplicates.
	assert.Len(t, col.live(), 1)

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"api_key"}, keys)
}

func TestStoreFallsBackToCreateWhenSearchFails(t *testing.T) {
	col := &fakeCollection{searchErr: errors.New("service busy")}
	store := NewStore(col)

	require.NoError(t, store.Store("api_key", "v1"))

	col.searchErr = nil

	value, ok, err := store.Retrieve("api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", value)
}

func TestStorePropagatesCreateFailure(t *testing.T) {
	col := &fakeCollection{createErr: errors.New("disk full")}
	store := NewStore(col)

	err := store.Store("api_key", "v1")
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "api_key", storeErr.Key)
}

func TestRetrieveMissingIsNotAnError(t *testing.T) {
	store := NewStore(&fakeCollection{})

	value, ok, err := store.Retrieve("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestRetrieveAbsorbsSearchFailure(t *testing.T) {
	store := NewStore(&fakeCollection{searchErr: errors.New("service down")})

	_, ok, err := store.Retrieve("api_key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRetrievePropagatesReadFailure(t *testing.T) {
	col := &fakeCollection{items: []*fakeItem{{
		attrs:    map[string]string{"service": ServiceName, "key": "api_key"},
		valueErr: errors.New("session expired"),
	}}}
	store := NewStore(col)

	_, _, err := store.Retrieve("api_key")
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestRetrieveInvalidUTF8IsEncodingError(t *testing.T) {
	col := &fakeCollection{items: []*fakeItem{{
		attrs: map[string]string{"service": ServiceName, "key": "api_key"},
		value: []byte{0xff, 0xfe, 0xfd},
	}}}
	store := NewStore(col)

	_, _, err := store.Retrieve("api_key")
	require.Error(t, err)

	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "api_key", encErr.Key)
}

func TestDeleteRemovesAllMatches(t *testing.T) {
	// Two items with the same key, as the create fallback can produce.
	attrs := map[string]string{"service": ServiceName, "key": "api_key"}
	col := &fakeCollection{items: []*fakeItem{
		{attrs: attrs, value: []byte("v1")},
		{attrs: attrs, value: []byte("v2")},
	}}
	store := NewStore(col)

	require.NoError(t, store.Delete("api_key"))
	assert.Empty(t, col.live())

	_, ok, err := store.Retrieve("api_key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	store := NewStore(&fakeCollection{})

	require.NoError(t, store.Delete("missing"))
	require.NoError(t, store.Delete("missing"))
}

func TestDeleteAbsorbsSearchFailure(t *testing.T) {
	store := NewStore(&fakeCollection{searchErr: errors.New("service down")})

	require.NoError(t, store.Delete("api_key"))
}

func TestDeletePropagatesItemFailure(t *testing.T) {
	col := &fakeCollection{items: []*fakeItem{{
		attrs:     map[string]string{"service": ServiceName, "key": "api_key"},
		deleteErr: errors.New("locked"),
	}}}
	store := NewStore(col)

	err := store.Delete("api_key")
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestListKeysFiltersByServiceOnly(t *testing.T) {
	col := &fakeCollection{items: []*fakeItem{
		{attrs: map[string]string{"service": ServiceName, "key": "a"}},
		{attrs: map[string]string{"service": ServiceName, "key": "b"}},
		{attrs: map[string]string{"service": "other-app", "key": "c"}},
	}}
	store := NewStore(col)

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestListKeysSkipsItemsWithoutKeyAttribute(t *testing.T) {
	col := &fakeCollection{items: []*fakeItem{
		{attrs: map[string]string{"service": ServiceName, "key": "a"}},
		{attrs: map[string]string{"service": ServiceName}},
		{attrs: map[string]string{"service": ServiceName, "key": "b"}, attrsErr: errors.New("gone")},
	}}
	store := NewStore(col)

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestListKeysAbsorbsSearchFailure(t *testing.T) {
	store := NewStore(&fakeCollection{searchErr: errors.New("service down")})

	keys, err := store.ListKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
