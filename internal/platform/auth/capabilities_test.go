package auth

import "testing"

func TestCapabilitiesFor_Patient(t *testing.T) {
	caps := CapabilitiesFor(RolePatient)
	if caps.IsManager() {
		t.Error("patient must not hold any management capability")
	}
	if !caps.CanViewOwnRecordOnly {
		t.Error("patient should be limited to own record")
	}
	if caps.CanViewAllPatients || caps.CanAdministerMedication || caps.CanRecordVitals {
		t.Errorf("unexpected clinical capability for patient: %+v", caps)
	}
	if !caps.CanMessage {
		t.Error("patient should be able to message")
	}
}

func TestCapabilitiesFor_Roles(t *testing.T) {
	tests := []struct {
		role Role
		has  []Capability
		not  []Capability
	}{
		{RoleStaff, []Capability{ManageStaff, ManageUsers, AdministerMedication, RecordVitals}, []Capability{ViewOwnRecord}},
		{RoleDoctor, []Capability{ManageClinicalOrders, ViewAllPatients}, []Capability{ManageUsers, ManageStaff, AdministerMedication}},
		{RoleMedTech, []Capability{ManageLabs}, []Capability{ManageImaging, ManageClinicalOrders}},
		{RoleRadTech, []Capability{ManageImaging}, []Capability{ManageLabs, ManageUsers}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			caps := CapabilitiesFor(tt.role)
			for _, c := range tt.has {
				if !caps.Has(c) {
					t.Errorf("expected %s to have %s", tt.role, c)
				}
			}
			for _, c := range tt.not {
				if caps.Has(c) {
					t.Errorf("expected %s not to have %s", tt.role, c)
				}
			}
		})
	}
}

func TestCapabilitiesFor_Unknown(t *testing.T) {
	if (CapabilitiesFor("janitor") != Capabilities{}) {
		t.Error("unknown role should get an empty capability set")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Doctor "); !ok || r != RoleDoctor {
		t.Errorf("expected doctor, got %q %v", r, ok)
	}
	if _, ok := ParseRole("admin"); ok {
		t.Error("admin is not a CareConnect role")
	}
}
