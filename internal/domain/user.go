package domain

import "time"

// Role enumerates the access roles recognized by the permission model.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleMarket   Role = "Market"
	RoleDealer   Role = "Dealer"
)

// Department identifies the internal organizational unit of a user.
// Dealer users carry no department.
type Department string

const (
	DepartmentMarketing Department = "marketing"
	DepartmentOperation Department = "operation"
	DepartmentRD        Department = "rd"
)

// User is the authenticated caller supplied by the identity provider.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   Department
	DealerID     *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsInternal reports whether the user belongs to an internal role.
func (u *User) IsInternal() bool {
	return u.Role != RoleDealer
}
