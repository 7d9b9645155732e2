package auth

import "strings"

// Role is the account role stored on each user binding.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleDoctor  Role = "doctor"
	RoleMedTech Role = "medtech"
	RoleRadTech Role = "radtech"
	RolePatient Role = "patient"
)

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStaff, RoleDoctor, RoleMedTech, RoleRadTech, RolePatient:
		return r, true
	}
	return "", false
}

// Capabilities is the set of actions a session may perform. It is derived
// once from the role when the session is established.
type Capabilities struct {
	CanManageStaff          bool `json:"can_manage_staff"`
	CanManageUsers          bool `json:"can_manage_users"`
	CanManageClinicalOrders bool `json:"can_manage_clinical_orders"`
	CanAdministerMedication bool `json:"can_administer_medication"`
	CanRecordVitals         bool `json:"can_record_vitals"`
	CanManageLabs           bool `json:"can_manage_labs"`
	CanManageImaging        bool `json:"can_manage_imaging"`
	CanViewAllPatients      bool `json:"can_view_all_patients"`
	CanViewOwnRecordOnly    bool `json:"can_view_own_record_only"`
	CanMessage              bool `json:"can_message"`
	CanPrintReports         bool `json:"can_print_reports"`
}

// CapabilitiesFor returns the capability set granted to role. Unknown roles
// get nothing.
func CapabilitiesFor(role Role) Capabilities {
	switch role {
	case RoleStaff:
		return Capabilities{
			CanManageStaff:          true,
			CanManageUsers:          true,
			CanManageClinicalOrders: true,
			CanAdministerMedication: true,
			CanRecordVitals:         true,
			CanManageLabs:           true,
			CanManageImaging:        true,
			CanViewAllPatients:      true,
			CanMessage:              true,
			CanPrintReports:         true,
		}
	case RoleDoctor:
		return Capabilities{
			CanManageClinicalOrders: true,
			CanRecordVitals:         true,
			CanViewAllPatients:      true,
			CanMessage:              true,
			CanPrintReports:         true,
		}
	case RoleMedTech:
		return Capabilities{
			CanManageLabs:      true,
			CanViewAllPatients: true,
			CanMessage:         true,
			CanPrintReports:    true,
		}
	case RoleRadTech:
		return Capabilities{
			CanManageImaging:   true,
			CanViewAllPatients: true,
			CanMessage:         true,
			CanPrintReports:    true,
		}
	case RolePatient:
		return Capabilities{
			CanViewOwnRecordOnly: true,
			CanMessage:           true,
		}
	}
	return Capabilities{}
}

// Capability names a single flag of Capabilities for route gating.
type Capability string

const (
	ManageStaff          Capability = "manage_staff"
	ManageUsers          Capability = "manage_users"
	ManageClinicalOrders Capability = "manage_clinical_orders"
	AdministerMedication Capability = "administer_medication"
	RecordVitals         Capability = "record_vitals"
	ManageLabs           Capability = "manage_labs"
	ManageImaging        Capability = "manage_imaging"
	ViewAllPatients      Capability = "view_all_patients"
	ViewOwnRecord        Capability = "view_own_record"
	Message              Capability = "message"
	PrintReports         Capability = "print_reports"
)

// Has reports whether the set includes c.
func (caps Capabilities) Has(c Capability) bool {
	switch c {
	case ManageStaff:
		return caps.CanManageStaff
	case ManageUsers:
		return caps.CanManageUsers
	case ManageClinicalOrders:
		return caps.CanManageClinicalOrders
	case AdministerMedication:
		return caps.CanAdministerMedication
	case RecordVitals:
		return caps.CanRecordVitals
	case ManageLabs:
		return caps.CanManageLabs
	case ManageImaging:
		return caps.CanManageImaging
	case ViewAllPatients:
		return caps.CanViewAllPatients
	case ViewOwnRecord:
		return caps.CanViewOwnRecordOnly
	case Message:
		return caps.CanMessage
	case PrintReports:
		return caps.CanPrintReports
	}
	return false
}

// IsManager reports whether any management capability is present.
func (caps Capabilities) IsManager() bool {
	return caps.CanManageStaff || caps.CanManageUsers || caps.CanManageClinicalOrders ||
		caps.CanManageLabs || caps.CanManageImaging
}
