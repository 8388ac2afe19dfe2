package entities

import (
	"fmt"
	"strings"
)

// RoleField is the document key holding the role tag. The capitalised key is kept
// for compatibility with documents written before roles were normalised.
const RoleField = "Role"

type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleStudent):
		return RoleStudent, nil
	case string(RoleRecruiter):
		return RoleRecruiter, nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// Spellings lists every stored variant of the role that legacy writers produced.
func (r Role) Spellings() []string {
	return []string{string(r), strings.ToUpper(string(r)[:1]) + string(r)[1:]}
}
