package model

import (
	"encoding/json"
	"slices"
)

// Role is a permission label attached to a user.
type Role string

const (
	// RoleAdmin grants access to moderation and platform settings.
	RoleAdmin Role = "ADMIN"
	// RoleAuthor grants access to the author panel.
	RoleAuthor Role = "AUTHOR"
)

// RoleSet is the set of roles held by a user. It is built once when the user
// record is decoded and answers role questions by lookup.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a RoleSet from the given roles. Duplicates collapse.
func NewRoleSet(roles ...Role) RoleSet {
	set := RoleSet{roles: make(map[Role]struct{}, len(roles))}
	for _, r := range roles {
		if r == "" {
			continue
		}
		set.roles[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s.roles[role]
	return ok
}

// IsAdmin reports whether the set contains RoleAdmin.
func (s RoleSet) IsAdmin() bool {
	return s.Has(RoleAdmin)
}

// IsAuthor reports whether the set contains RoleAuthor.
func (s RoleSet) IsAuthor() bool {
	return s.Has(RoleAuthor)
}

// Len returns the number of distinct roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// List returns the roles in lexical order.
func (s RoleSet) List() []Role {
	out := make([]Role, 0, len(s.roles))
	for r := range s.roles {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a JSON array of role names.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes a JSON array of role names.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var roles []Role
	if err := json.Unmarshal(data, &roles); err != nil {
		return err
	}
	*s = NewRoleSet(roles...)
	return nil
}

// User is the identity record of the signed-in account.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Roles  RoleSet `json:"roles"`
	Avatar string  `json:"avatar,omitempty"`
}
