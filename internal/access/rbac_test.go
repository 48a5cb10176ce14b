package access

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"room-reservation/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	r, err := NewRBACFromFile("")
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		resource, action string
		want             bool
	}{
		{ResourceRooms, ActionRead, true},
		{ResourceRooms, ActionCreate, true},
		{ResourceRooms, ActionDelete, true},
		{ResourceReservations, ActionRead, true},
		{ResourceReservations, ActionDelete, true},
		{ResourceReservations, ActionCreate, false},
		{ResourceAccessLog, ActionRead, true},
		{ResourceAccessLog, ActionDelete, false},
	}
	for _, c := range checks {
		if got := r.Can("admin", c.resource, c.action); got != c.want {
			t.Errorf("Can(admin, %s, %s) = %v, want %v", c.resource, c.action, got, c.want)
		}
	}

	if roles := r.GetUserRoles("admin"); !slices.Equal(roles, []string{"staff", "viewer"}) {
		t.Errorf("roles = %v", roles)
	}
}

func TestRoleAssignment(t *testing.T) {
	r, err := NewRBACFromFile("")
	if err != nil {
		t.Fatal(err)
	}

	r.AssignRole("auditor", "viewer", "viewer")
	if roles := r.GetUserRoles("auditor"); !slices.Equal(roles, []string{"viewer"}) {
		t.Errorf("roles = %v", roles)
	}
	if r.Can("auditor", ResourceRooms, ActionDelete) {
		t.Error("viewer can delete rooms")
	}
	if !r.Can("auditor", ResourceAccessLog, ActionRead) {
		t.Error("viewer cannot read access log")
	}

	r.AssignRole("auditor", "superuser")
	if !r.Can("auditor", ResourceRooms, ActionDelete) {
		t.Error("cache not invalidated after AssignRole")
	}
}

func TestSuperusersFromConfig(t *testing.T) {
	r, err := NewRBACFromConfig(config.RBACConfig{Superusers: " root , ,ops"})
	if err != nil {
		t.Fatal(err)
	}
	for _, username := range []string{"root", "ops"} {
		if !slices.Contains(r.GetUserRoles(username), RoleSuperuser) {
			t.Errorf("%s roles = %v", username, r.GetUserRoles(username))
		}
	}
	if roles := r.GetUserRoles("admin"); slices.Contains(roles, RoleSuperuser) {
		t.Errorf("unlisted user roles = %v", roles)
	}

	path := filepath.Join(t.TempDir(), "policy.yaml")
	policy := "roles:\n  viewer:\n    permissions: []\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRBACFromConfig(config.RBACConfig{PolicyFile: path, Superusers: "root"}); err == nil {
		t.Error("superusers accepted without a superuser role")
	}
}

func TestPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	policy := `
default_role: none
roles:
  none:
    permissions: []
  manager:
    permissions:
      - resource: "*"
        actions: ["*"]
users:
  boss:
    roles: [manager]
`
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := NewRBACFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if r.Can("someone", ResourceRooms, ActionRead) {
		t.Error("default role should grant nothing")
	}
	if !r.Can("boss", ResourceAccessLog, ActionRead) {
		t.Error("wildcard role should grant everything")
	}
}

func TestInvalidPolicy(t *testing.T) {
	r := NewRBAC()
	if err := r.LoadPolicyData([]byte("default_role: ghost\nroles: {}\n")); err == nil {
		t.Error("undefined default role accepted")
	}
	if r.Can("admin", ResourceRooms, ActionRead) {
		t.Error("empty RBAC granted access")
	}
}
