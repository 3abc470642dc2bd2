// Package features is the capability engine. A Feature names one action a
// principal may perform or one projection it may see. The set is closed:
// strings are only accepted through Parse and ParseSet, where feature names
// arrive from the database or the wire.
package features

import (
	"fmt"
	"strings"
)

type Feature uint8

const (
	ReadUser Feature = iota + 1
	ReadUserSelf
	CreateUser
	UpdateUser
	UpdateUserOthers
	ReadSession
	CreateSession
	ReadActivationToken
	ReadMigration
	CreateMigration
	ReadStatus
	ReadStatusAll
)

var names = [...]string{
	ReadUser:            "read:user",
	ReadUserSelf:        "read:user:self",
	CreateUser:          "create:user",
	UpdateUser:          "update:user",
	UpdateUserOthers:    "update:user:others",
	ReadSession:         "read:session",
	CreateSession:       "create:session",
	ReadActivationToken: "read:activation_token",
	ReadMigration:       "read:migration",
	CreateMigration:     "create:migration",
	ReadStatus:          "read:status",
	ReadStatusAll:       "read:status:all",
}

var byName = func() map[string]Feature {
	m := make(map[string]Feature, len(names))
	for f, n := range names {
		if n != "" {
			m[n] = Feature(f)
		}
	}
	return m
}()

// Valid reports whether f belongs to the enumeration.
func (f Feature) Valid() bool {
	return f > 0 && int(f) < len(names)
}

func (f Feature) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Feature(%d)", uint8(f))
	}
	return names[f]
}

// MarshalText writes the wire name, so sets serialize as string arrays.
func (f Feature) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown feature %d", uint8(f))
	}
	return []byte(names[f]), nil
}

func (f *Feature) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Parse maps a wire name to its Feature.
func Parse(s string) (Feature, error) {
	if f, ok := byName[s]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown feature %q", s)
}

// ParseSet parses every name in ss and fails on the first unknown one.
// Duplicates collapse.
func ParseSet(ss []string) (Set, error) {
	set := make(Set, len(ss))
	for _, s := range ss {
		f, err := Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		set[f] = struct{}{}
	}
	return set, nil
}

// Set is a principal's granted features. A nil Set marks a principal that
// was never given one, which the engine treats as a contract violation.
type Set map[Feature]struct{}

func NewSet(fs ...Feature) Set {
	s := make(Set, len(fs))
	for _, f := range fs {
		s[f] = struct{}{}
	}
	return s
}

func (s Set) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// Strings returns the wire names in enumeration order.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for f := ReadUser; f.Valid(); f++ {
		if s.Has(f) {
			out = append(out, names[f])
		}
	}
	return out
}

// Names converts a list of features to their wire names, keeping order.
func Names(fs ...Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}

var (
	// AnonymousFeatures are held by every request without a session.
	AnonymousFeatures = []Feature{ReadActivationToken, CreateSession, CreateUser}
	// PendingUserFeatures are granted at sign up, before activation.
	PendingUserFeatures = []Feature{ReadActivationToken}
	// ActivatedUserFeatures replace the pending set once the account is activated.
	ActivatedUserFeatures = []Feature{CreateSession, ReadSession, UpdateUser}
)
