package domain

import (
	"sort"
	"strings"
)

type Role int

const (
	RoleUndefined Role = iota
	RoleLocker
	RoleRecipient
	RoleIssuer
	RoleObserver
)

func (r Role) String() string {
	switch r {
	case RoleLocker:
		return "LOCKER"
	case RoleRecipient:
		return "RECIPIENT"
	case RoleIssuer:
		return "ISSUER"
	case RoleObserver:
		return "OBSERVER"
	default:
		return "UNDEFINED"
	}
}

// PartySet is an immutable, de-duplicated and ordered set of party ids.
// The insertion order of the first occurrence of each party is preserved.
type PartySet struct {
	members []string
	index   map[string]struct{}
}

func NewPartySet(parties ...string) PartySet {
	s := PartySet{
		members: make([]string, 0, len(parties)),
		index:   make(map[string]struct{}, len(parties)),
	}
	for _, p := range parties {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := s.index[p]; ok {
			continue
		}
		s.index[p] = struct{}{}
		s.members = append(s.members, p)
	}
	return s
}

func (s PartySet) Union(other PartySet) PartySet {
	return NewPartySet(append(s.Members(), other.members...)...)
}

func (s PartySet) With(parties ...string) PartySet {
	return NewPartySet(append(s.Members(), parties...)...)
}

func (s PartySet) Without(parties ...string) PartySet {
	excluded := NewPartySet(parties...)
	kept := make([]string, 0, len(s.members))
	for _, p := range s.members {
		if !excluded.Contains(p) {
			kept = append(kept, p)
		}
	}
	return NewPartySet(kept...)
}

func (s PartySet) Contains(party string) bool {
	_, ok := s.index[party]
	return ok
}

// Members returns a copy of the set members.
func (s PartySet) Members() []string {
	return append([]string{}, s.members...)
}

func (s PartySet) Len() int {
	return len(s.members)
}

func (s PartySet) IsEmpty() bool {
	return len(s.members) == 0
}

// Equals ignores the order of members.
func (s PartySet) Equals(other PartySet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, p := range s.members {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

func (s PartySet) Sorted() []string {
	sorted := s.Members()
	sort.Strings(sorted)
	return sorted
}

func (s PartySet) String() string {
	return "[" + strings.Join(s.members, ",") + "]"
}
