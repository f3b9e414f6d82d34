// This file defines read-only user lookups.  The booking surface only
// needs a passenger's display fields for responses and e-tickets, so
// there are no write methods here.
package repository

import (
	"context"
	"database/sql"

	"github.com/manishnaik69/Bus-Transit-Pro-sub000/internal/model"
)

// UserRepo serves user account lookups.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Get retrieves a user by ID, populating the role-specific profile
// group when the role carries one.
func (r *UserRepo) Get(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT id, full_name, phone, email, role,
	                  license_no, license_expiry, employee_no, depot,
	                  created_at, updated_at
	           FROM users WHERE id = ?`
	var (
		u                     model.User
		licenseNo, licenseExp sql.NullString
		employeeNo, depot     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.FullName, &u.Phone, &u.Email, &u.Role,
		&licenseNo, &licenseExp, &employeeNo, &depot,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "user")
	}
	switch u.Role {
	case model.RoleDriver:
		u.Driver = &model.DriverProfile{LicenseNo: licenseNo.String, LicenseExpiry: licenseExp.String}
	case model.RoleOperator, model.RoleMaintenanceStaff:
		u.Staff = &model.StaffProfile{EmployeeNo: employeeNo.String, Depot: depot.String}
	}
	return &u, nil
}
