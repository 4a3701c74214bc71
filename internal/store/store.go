// Package store persists the two pieces of learner state that survive a
// session: the current course snapshot and the provider credential.
//
// Both are opaque blobs under fixed keys. A missing or unreadable blob is
// reported as ErrNotFound so callers can offer a fresh start.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-course/internal/course"
)

// ErrNotFound is returned when nothing usable is stored under a key.
var ErrNotFound = errors.New("not found")

const (
	keyCourse     = "course"
	keyCredential = "credential"
)

// Store is the persistence contract used by the player.
type Store interface {
	LoadCourse(ctx context.Context) (course.Course, error)
	SaveCourse(ctx context.Context, c course.Course) error
	DeleteCourse(ctx context.Context) error

	LoadCredential(ctx context.Context) (string, error)
	SaveCredential(ctx context.Context, credential string) error
	DeleteCredential(ctx context.Context) error

	HealthCheck(ctx context.Context) error
}

// backend is a raw key/value space. get returns ErrNotFound for a missing key.
type backend interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, value []byte) error
	del(ctx context.Context, key string) error
	ping(ctx context.Context) error
}

// KVStore implements Store on top of a key/value backend.
type KVStore struct {
	kv        backend
	namespace string
	sealer    *Sealer
}

const defaultNamespace = "default"

// Option configures a KVStore.
type Option func(*KVStore)

// WithNamespace prefixes both fixed keys.
func WithNamespace(ns string) Option {
	return func(s *KVStore) { s.namespace = ns }
}

// WithSealer encrypts the credential at rest.
func WithSealer(sealer *Sealer) Option {
	return func(s *KVStore) { s.sealer = sealer }
}

func newKVStore(kv backend, opts ...Option) *KVStore {
	s := &KVStore{kv: kv, namespace: defaultNamespace}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// LoadCourse returns the persisted course. A blob that does not decode into a
// well-formed course is logged and reported as ErrNotFound.
func (s *KVStore) LoadCourse(ctx context.Context) (course.Course, error) {
	data, err := s.kv.get(ctx, s.key(keyCourse))
	if err != nil {
		return course.Course{}, err
	}
	var c course.Course
	if err := json.Unmarshal(data, &c); err != nil {
		slog.Warn("discarding unreadable stored course", "key", s.key(keyCourse), "error", err)
		return course.Course{}, ErrNotFound
	}
	if err := course.ValidateStructure(c); err != nil {
		slog.Warn("discarding malformed stored course", "key", s.key(keyCourse), "error", err)
		return course.Course{}, ErrNotFound
	}
	return c, nil
}

func (s *KVStore) SaveCourse(ctx context.Context, c course.Course) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	if err := s.kv.set(ctx, s.key(keyCourse), data); err != nil {
		return fmt.Errorf("save course: %w", err)
	}
	return nil
}

func (s *KVStore) DeleteCourse(ctx context.Context) error {
	if err := s.kv.del(ctx, s.key(keyCourse)); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// LoadCredential returns the stored credential. A credential that cannot be
// unsealed is logged and reported as ErrNotFound.
func (s *KVStore) LoadCredential(ctx context.Context) (string, error) {
	data, err := s.kv.get(ctx, s.key(keyCredential))
	if err != nil {
		return "", err
	}
	credential := string(data)
	if s.sealer != nil {
		credential, err = s.sealer.Open(credential)
		if err != nil {
			slog.Warn("discarding unreadable stored credential", "error", err)
			return "", ErrNotFound
		}
	}
	if strings.TrimSpace(credential) == "" {
		return "", ErrNotFound
	}
	return credential, nil
}

func (s *KVStore) SaveCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return s.DeleteCredential(ctx)
	}
	value := credential
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(credential)
		if err != nil {
			return err
		}
		value = sealed
	}
	if err := s.kv.set(ctx, s.key(keyCredential), []byte(value)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *KVStore) DeleteCredential(ctx context.Context) error {
	if err := s.kv.del(ctx, s.key(keyCredential)); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (s *KVStore) HealthCheck(ctx context.Context) error {
	return s.kv.ping(ctx)
}
