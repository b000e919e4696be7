package domain

type UserRole string

const (
	UserRolePatient UserRole = "patient"
	UserRoleDoctor  UserRole = "doctor"
	UserRoleStaff   UserRole = "staff"
	UserRoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRolePatient, UserRoleDoctor, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

// AuthenticatedPrincipal is the verified caller. It is passed explicitly to
// every operation that records or checks who acts.
type AuthenticatedPrincipal struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (p AuthenticatedPrincipal) IsPatient() bool {
	return p.Role == UserRolePatient
}

// ManagesDoctor is true for staff and for the doctor acting on their own
// schedule. Doctor accounts share their id with the doctor record.
func (p AuthenticatedPrincipal) ManagesDoctor(doctorID int64) bool {
	return p.IsStaff() || (p.Role == UserRoleDoctor && p.UserID == doctorID)
}

func (p AuthenticatedPrincipal) IsStaff() bool {
	return p.Role == UserRoleStaff || p.Role == UserRoleAdmin
}
