// Package secrets stores application credentials in the system secret
// service (freedesktop Secret Service over D-Bus).
package secrets

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
)

const (
	// ServiceName is the attribute value scoping items to this application.
	ServiceName = "vibeproxy"

	contentTypeText = "text/plain"
)

// Collection is the slice of the secret service the store needs: attribute
// search and item creation on a single unlocked collection.
type Collection interface {
	// Search returns all items whose attributes match attrs exactly.
	Search(attrs map[string]string) ([]Item, error)

	// Create adds a new item. With replace set, an item with identical
	// attributes is overwritten by the service.
	Create(label string, attrs map[string]string, value []byte, contentType string, replace bool) error
}

// Item is a stored secret addressed by attribute search.
type Item interface {
	Value() ([]byte, error)
	SetValue(value []byte, contentType string) error
	Delete() error
	Attributes() (map[string]string, error)
}

// Store manages VibeProxy's secrets inside a shared collection. The
// collection may hold unrelated items and be modified by other processes;
// every operation addresses items by the {service, key} attribute pair only.
type Store struct {
	collection Collection
	log        zerolog.Logger
}

// Connect establishes a session with the system secret service, unlocks the
// default collection if needed, and returns a store bound to it. This can be
// slow and interactive (the unlock prompt), and fails when the service is
// unreachable or the user declines the unlock.
func Connect() (*Store, error) {
	svc, err := connectService()
	if err != nil {
		return nil, err
	}

	collection, err := svc.defaultCollection()
	if err != nil {
		return nil, err
	}

	return NewStore(collection), nil
}

// NewStore creates a store over an already-connected collection.
func NewStore(collection Collection) *Store {
	return &Store{
		collection: collection,
		log:        logging.Component("secrets"),
	}
}

func attributes(key string) map[string]string {
	return map[string]string{
		"service": ServiceName,
		"key":     key,
	}
}

// Store upserts a secret. An existing item with matching attributes is
// overwritten in place; otherwise a new item is created. When the search
// itself fails the store falls back to unconditional creation rather than
// failing the write, accepting a possible duplicate under concurrent failure;
// Delete compensates by removing all matches.
func (s *Store) Store(key, value string) error {
	attrs := attributes(key)
	label := ServiceName + "/" + key

	items, err := s.collection.Search(attrs)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("search failed, creating new item")

		if err := s.collection.Create(label, attrs, []byte(value), contentTypeText, true); err != nil {
			return &StoreError{Key: key, Err: fmt.Errorf("failed to create secret: %w", err)}
		}

		return nil
	}

	if len(items) > 0 {
		item := items[len(items)-1]
		if err := item.SetValue([]byte(value), contentTypeText); err != nil {
			return &StoreError{Key: key, Err: fmt.Errorf("failed to update secret: %w", err)}
		}

		s.log.Info().Str("key", key).Msg("updated existing secret")

		return nil
	}

	if err := s.collection.Create(label, attrs, []byte(value), contentTypeText, true); err != nil {
		return &StoreError{Key: key, Err: fmt.Errorf("failed to create secret: %w", err)}
	}

	s.log.Info().Str("key", key).Msg("created new secret")

	return nil
}

// Retrieve looks up a secret by key. Absence is not an error: the second
// return value reports whether the secret exists. A search failure against
// the backing service degrades to not-found; a payload that cannot be decoded
// as UTF-8 is a hard error.
func (s *Store) Retrieve(key string) (string, bool, error) {
	items, err := s.collection.Search(attributes(key))
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to search for secret")
		return "", false, nil
	}

	if len(items) == 0 {
		s.log.Debug().Str("key", key).Msg("secret not found")
		return "", false, nil
	}

	secret, err := items[len(items)-1].Value()
	if err != nil {
		return "", false, &StoreError{Key: key, Err: fmt.Errorf("failed to read secret: %w", err)}
	}

	if !utf8.Valid(secret) {
		return "", false, &EncodingError{Key: key}
	}

	return string(secret), true, nil
}

// Delete removes every item matching the key, defending against duplicates
// accumulated by the Store fallback path. Deleting zero items is a no-op
// success, as is a failed search.
func (s *Store) Delete(key string) error {
	items, err := s.collection.Search(attributes(key))
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to search for secret to delete")
		return nil
	}

	for _, item := range items {
		if err := item.Delete(); err != nil {
			return &StoreError{Key: key, Err: fmt.Errorf("failed to delete secret: %w", err)}
		}
	}

	s.log.Info().Str("key", key).Int("items", len(items)).Msg("deleted secret")

	return nil
}

// ListKeys returns the keys of all secrets stored for this application.
// Items missing the key attribute are skipped; a search failure degrades to
// an empty result.
func (s *Store) ListKeys() ([]string, error) {
	items, err := s.collection.Search(map[string]string{"service": ServiceName})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list keys")
		return nil, nil
	}

	keys := make([]string, 0, len(items))

	for _, item := range items {
		attrs, err := item.Attributes()
		if err != nil {
			continue
		}

		if key, ok := attrs["key"]; ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}
