package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
)

// BadgerStore persists users in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore wraps an open database. The caller owns db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens (or creates) a database at dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// Create stores a new user and its email index in one transaction.
func (s *BadgerStore) Create(_ context.Context, u *User) error {
	data, err := json.Marshal(storedUser(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailKeyPrefix + NormalizeEmail(u.Email))
		_, err := txn.Get(emailKey)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get email index: %w", err)
		}

		if err := txn.Set([]byte(userKeyPrefix+u.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if err := txn.Set(emailKey, []byte(u.ID)); err != nil {
			return fmt.Errorf("set email index: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) FindByID(_ context.Context, id string) (*User, error) {
	var u *User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		u, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *BadgerStore) FindByEmail(_ context.Context, email string) (*User, error) {
	var u *User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailKeyPrefix + NormalizeEmail(email)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get email index: %w", err)
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read email index: %w", err)
		}
		u, err = getUser(txn, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces an existing user. The email index is not rewritten;
// emails are immutable after signup.
func (s *BadgerStore) Update(_ context.Context, u *User) error {
	data, err := json.Marshal(storedUser(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + u.ID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		return txn.Set(key, data)
	})
}

// badgerUser is the stored form; unlike User it keeps the password hash.
type badgerUser struct {
	User
	PasswordHash string `json:"password_hash"`
}

func storedUser(u *User) badgerUser {
	return badgerUser{User: *u.Clone(), PasswordHash: u.PasswordHash}
}

func getUser(txn *badger.Txn, id string) (*User, error) {
	item, err := txn.Get([]byte(userKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var stored badgerUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}

	u := stored.User.Clone()
	u.PasswordHash = stored.PasswordHash
	return u, nil
}
