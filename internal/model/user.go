package model

import "time"

// Role tags a user record with its function in the system.  A single
// user row carries every role; role-specific attributes live in the
// optional profile groups below instead of separate subtypes.
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleOperator         Role = "OPERATOR"
	RoleDriver           Role = "DRIVER"
	RolePassenger        Role = "PASSENGER"
	RoleMaintenanceStaff Role = "MAINTENANCE"
)

// DriverProfile holds the attributes that only apply to users with
// RoleDriver.
type DriverProfile struct {
	LicenseNo     string // users.license_no
	LicenseExpiry string // users.license_expiry (date string, informational)
}

// StaffProfile holds the attributes shared by operator and
// maintenance roles.
type StaffProfile struct {
	EmployeeNo string // users.employee_no
	Depot      string // users.depot
}

// User is a single account record.  Exactly one Role applies; the
// profile pointers are nil for roles they do not belong to.
type User struct {
	ID       int64  // users.id
	FullName string // users.full_name
	Phone    string // users.phone
	Email    string // users.email
	Role     Role   // users.role

	Driver *DriverProfile // populated when Role == RoleDriver
	Staff  *StaffProfile  // populated for operator/maintenance roles

	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
