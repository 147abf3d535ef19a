package domain

import "time"

// UserRole determines the capabilities of an account.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleEmployee   UserRole = "employee"
	RoleTechnician UserRole = "technician"
)

// User is an account in the directory. Group drives the priority a new
// ticket receives; role gates lifecycle operations and reporting.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         UserRole
	Group        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the display name used in events and reports.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsTechnician reports technician capability.
func (u *User) IsTechnician() bool { return u.Role == RoleTechnician }

// IsAdmin reports admin capability.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
