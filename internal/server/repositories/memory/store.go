// Package memory keeps users, sessions and activation tokens in process
// memory. It backs the server when the DSN is "memory" and serves as a fast
// fake in service tests. Lookups and the token compare-and-set run under one
// mutex. WithinTx serializes transactions and keeps an undo log of the rows
// the unit of work wrote, so a rollback never touches other writes.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/dbx"
	"github.com/dmitrijs2005/fintab/internal/server/models"
)

type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	users       map[uuid.UUID]models.User
	sessions    map[uuid.UUID]models.Session
	activations map[uuid.UUID]models.ActivationToken
}

func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]models.User),
		sessions:    make(map[uuid.UUID]models.Session),
		activations: make(map[uuid.UUID]models.ActivationToken),
	}
}

// Conn returns nil; memory repositories ignore the handle they are bound to.
func (s *Store) Conn() dbx.DBTX { return nil }

// WithinTx runs fn and undoes its writes if it fails or panics. Only rows
// written through the ctx handed to fn are rolled back.
func (s *Store) WithinTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(log)
			panic(p)
		}
		if err != nil {
			s.rollback(log)
		}
	}()

	return fn(context.WithValue(ctx, undoKey{}, log), nil)
}

type undoKey struct{}

// undoLog holds, in write order, the steps that put rows back the way they
// were before the transaction touched them.
type undoLog struct {
	steps []func()
}

// remember records the current state of m[k] when ctx belongs to a
// transaction. Callers hold s.mu for writing.
func remember[K comparable, V any](ctx context.Context, m map[K]V, k K) {
	log, ok := ctx.Value(undoKey{}).(*undoLog)
	if !ok {
		return
	}
	prev, existed := m[k]
	log.steps = append(log.steps, func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.steps) - 1; i >= 0; i-- {
		log.steps[i]()
	}
}

// Users returns the user repository over the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Sessions returns the session repository over the store.
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s: s} }

// Activations returns the activation token repository over the store.
func (s *Store) Activations() *ActivationRepository { return &ActivationRepository{s: s} }

// Status returns a status repository describing the store.
func (s *Store) Status() *StatusRepository { return &StatusRepository{s: s} }
