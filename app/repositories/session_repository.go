package repositories

import (
	"errors"
	"fmt"
	"time"

	"svyasa/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerSessionRepository keeps sessions with a TTL matching their expiry so
// Badger drops them on its own.
type BadgerSessionRepository struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerSessionRepository creates a new BadgerSessionRepository
func NewBadgerSessionRepository(db *badger.DB) *BadgerSessionRepository {
	return &BadgerSessionRepository{db: db, now: time.Now}
}

// Save stores the session until its expiry
func (r *BadgerSessionRepository) Save(session *models.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	data, err := marshalEntity(session)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl))
	})
}

// Get retrieves a live session by ID
func (r *BadgerSessionRepository) Get(id string) (*models.Session, error) {
	var session models.Session
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete revokes a session. Deleting an unknown session is not an error.
func (r *BadgerSessionRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
}
