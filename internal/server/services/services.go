// Package services contains the server-side business logic: credential
// checks, the session lifecycle, activation tokens, user accounts and the
// status report. Services take a dbx.Transactor and a RepositoryManager so
// the same code runs over PostgreSQL and the memory store.
package services

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/fintab/internal/common"
)

// clock returns now truncated to the microsecond precision PostgreSQL keeps,
// so values computed here compare equal to what the database returns.
func clock(nowFn func() time.Time) time.Time {
	return nowFn().UTC().Truncate(time.Microsecond)
}

// internalError turns an unexpected repository error into the public internal error.
func internalError(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		return e
	}
	return common.NewInternalError(err)
}

// Clocked is implemented by services whose decisions depend on the time.
type Clocked interface {
	SetClock(nowFn func() time.Time)
}

func (s *SessionService) SetClock(nowFn func() time.Time)    { s.nowFn = nowFn }
func (s *ActivationService) SetClock(nowFn func() time.Time) { s.nowFn = nowFn }
func (s *UserService) SetClock(nowFn func() time.Time)       { s.nowFn = nowFn }
func (s *StatusService) SetClock(nowFn func() time.Time)     { s.nowFn = nowFn }
