package service

import (
	"context"
	"testing"

	"github.com/nxzen/ticketdesk/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IT Support", "it-support"},
		{"Human Resources", "human-resources"},
		{"R&D / Platform", "r-d-platform"},
		{"  Facilities  ", "facilities"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDepartmentService_Create(t *testing.T) {
	deptRepo := &fakeDepartmentRepo{departments: map[string]*domain.Department{}}
	userRepo := &fakeUserRepo{users: map[string]*domain.User{
		"staff-1": {ID: "staff-1", Name: "Ada", IsStaff: true, IsActive: true},
		"user-1":  {ID: "user-1", Name: "Carol", IsStaff: false, IsActive: true},
	}}
	svc := NewDepartmentService(deptRepo, userRepo)

	managerID := "staff-1"
	dept, err := svc.Create(context.Background(), DepartmentInput{
		Title:               "IT Support",
		EmailAddress:        "it@example.com",
		ManagerID:           &managerID,
		IsActive:            true,
		AutoAssignToManager: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dept.Slug != "it-support" {
		t.Errorf("slug = %q", dept.Slug)
	}

	// Duplicate titles collide on the slug.
	if _, err := svc.Create(context.Background(), DepartmentInput{Title: "IT Support"}); err == nil {
		t.Error("expected conflict for duplicate slug")
	}

	// A non-staff manager is rejected.
	endUser := "user-1"
	if _, err := svc.Create(context.Background(), DepartmentInput{Title: "Facilities", ManagerID: &endUser}); err == nil {
		t.Error("expected error for non-staff manager")
	}
}

func TestDepartmentService_ManagedBy(t *testing.T) {
	deptRepo := &fakeDepartmentRepo{departments: map[string]*domain.Department{}}
	userRepo := &fakeUserRepo{users: map[string]*domain.User{
		"staff-1": {ID: "staff-1", Name: "Ada", IsStaff: true, IsActive: true},
	}}
	svc := NewDepartmentService(deptRepo, userRepo)

	managerID := "staff-1"
	if _, err := svc.Create(context.Background(), DepartmentInput{Title: "IT Support", ManagerID: &managerID, IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), DepartmentInput{Title: "Facilities", IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	managed, err := svc.ManagedBy(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("ManagedBy: %v", err)
	}
	if len(managed) != 1 || managed[0].Slug != "it-support" {
		t.Errorf("managed = %+v, want only it-support", managed)
	}
}

func TestDepartmentService_Update_KeepsSlug(t *testing.T) {
	deptRepo := &fakeDepartmentRepo{departments: map[string]*domain.Department{}}
	userRepo := &fakeUserRepo{users: map[string]*domain.User{}}
	svc := NewDepartmentService(deptRepo, userRepo)

	dept, err := svc.Create(context.Background(), DepartmentInput{Title: "IT Support", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), dept.ID, DepartmentInput{Title: "IT Operations", IsActive: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "IT Operations" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Slug != "it-support" {
		t.Errorf("slug changed to %q; references would break", updated.Slug)
	}
}
