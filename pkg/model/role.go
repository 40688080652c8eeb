package model

import "github.com/m-mizutani/goerr/v2"

// Role is the audience of an answer. It selects the system instruction,
// response shaping, and which patient fields the context renders.
type Role string

const (
	RolePatient   Role = "patient"
	RoleClinician Role = "clinician"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RolePatient, RoleClinician:
		return nil
	default:
		return goerr.New("invalid role", goerr.V("role", r))
	}
}

// ParseRole converts a user-supplied string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}
