package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRolePermits(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionRead, true},
		{RoleAdmin, ActionWrite, true},
		{RoleAdmin, ActionAdmin, true},
		{RoleUser, ActionRead, true},
		{RoleUser, ActionWrite, true},
		{RoleUser, ActionAdmin, false},
		{RoleReadOnly, ActionRead, true},
		{RoleReadOnly, ActionWrite, false},
		{RoleReadOnly, ActionAdmin, false},
	}

	for _, tt := range tests {
		if got := tt.role.Permits(tt.action); got != tt.want {
			t.Errorf("Permits(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestRolePermitsUnknownInputs(t *testing.T) {
	actions := []Action{ActionRead, ActionWrite, ActionAdmin, Action("delete"), Action("")}
	for _, a := range actions {
		if Role("superuser").Permits(a) {
			t.Errorf("unknown role should not permit %q", a)
		}
		if Role("").Permits(a) {
			t.Errorf("empty role should not permit %q", a)
		}
	}
	// Case matters; "Admin" is not a known role.
	if Role("Admin").Permits(ActionRead) {
		t.Error("roles must match exactly")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleUser, RoleReadOnly} {
		if !r.Valid() {
			t.Errorf("Valid(%q) = false, want true", r)
		}
	}
	for _, r := range []Role{"", "superuser", "Admin", "READ-ONLY"} {
		if r.Valid() {
			t.Errorf("Valid(%q) = true, want false", r)
		}
	}
}

func TestUserPublicOmitsHash(t *testing.T) {
	u := &User{
		ID:           "u1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$salt$key",
		Role:         RoleUser,
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	if strings.Contains(body, "argon2id") || strings.Contains(strings.ToLower(body), "password") {
		t.Fatalf("public projection leaked the hash: %s", body)
	}
	if !strings.Contains(body, `"email":"alice@example.com"`) {
		t.Errorf("missing email in %s", body)
	}
	if !strings.Contains(body, `"role":"user"`) {
		t.Errorf("missing role in %s", body)
	}
}
