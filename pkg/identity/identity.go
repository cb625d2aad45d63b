package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is a profile's function within a school.
type Role string

const (
	// RoleAdmin manages a school.
	RoleAdmin Role = "admin"
	// RoleProfessor is a teacher.
	RoleProfessor Role = "professor"
	// RoleResponsavel is a student's parent or guardian.
	RoleResponsavel Role = "responsavel"
	// RoleAluno is a student.
	RoleAluno Role = "aluno"
	// RoleSysadmin operates the platform across schools.
	RoleSysadmin Role = "sysadmin"
)

// Roles lists every recognized role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleProfessor, RoleResponsavel, RoleAluno, RoleSysadmin}
}

// ParseRole validates a raw role value.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleResponsavel, RoleAluno, RoleSysadmin:
		return true
	}
	return false
}

// User is the identity-provider account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantSummary is the school summary joined onto a profile.
type TenantSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
	Logo string    `json:"logo_url,omitempty"`
}

// Profile is the application-level record for a user. A freshly created
// account may have no profile row yet; callers must treat a nil profile as a
// normal state, not an error.
type Profile struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Name      string         `json:"name"`
	Role      Role           `json:"role"`
	TenantID  *uuid.UUID     `json:"school_id,omitempty"`
	Tenant    *TenantSummary `json:"school,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
