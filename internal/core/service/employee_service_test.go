package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestEmployeeService_List_NonAdminScopedToOwnRecords(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob, _ := f.register(t, "bob", "", "b@x.io")

	// Asking for someone else's records is ignored for non-admins.
	res, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: alice, OwnerID: bob.UserID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 1 || len(res.Items) != 1 || res.Items[0].ID != aliceEmp {
		t.Fatalf("alice must see only her record, got %+v", res)
	}
	if res.Items[0].Owner == nil || res.Items[0].Owner.Username != "alice" {
		t.Fatalf("owner summary missing: %+v", res.Items[0])
	}
}

func TestEmployeeService_List_AdminSpansOwners(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "", "a@x.io")
	bob, bobEmp := f.register(t, "bob", "", "b@x.io")
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	all, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("admin should see 2 records, got %d", all.Total)
	}

	filtered, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, OwnerID: bob.UserID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if filtered.Total != 1 || filtered.Items[0].ID != bobEmp {
		t.Fatalf("admin owner filter not applied: %+v", filtered)
	}
}

func TestEmployeeService_List_PaginationAndOrder(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		f.svc.now = func() time.Time { return at }
		_, err := f.svc.Create(context.Background(), admin, ports.CreateEmployeeInput{
			Name: fmt.Sprintf("E%02d", i), Email: fmt.Sprintf("e%02d@x.io", i), Department: "Eng",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	page1, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page1.TotalPages != 3 || page1.CurrentPage != 1 || len(page1.Items) != PageSize {
		t.Fatalf("unexpected page 1: pages=%d current=%d items=%d", page1.TotalPages, page1.CurrentPage, len(page1.Items))
	}
	if page1.Items[0].Name != "E22" {
		t.Fatalf("newest record must come first, got %s", page1.Items[0].Name)
	}

	page3, _ := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Page: 3})
	if len(page3.Items) != 3 || page3.Items[2].Name != "E00" {
		t.Fatalf("unexpected last page: %+v", page3.Items)
	}

	beyond, _ := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Page: 9})
	if len(beyond.Items) != 0 || beyond.Total != 23 {
		t.Fatalf("page beyond the end must be empty with the full total: %+v", beyond)
	}

	clamped, _ := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Page: -4})
	if clamped.CurrentPage != 1 {
		t.Fatalf("page < 1 must be clamped to 1, got %d", clamped.CurrentPage)
	}
}

func TestEmployeeService_List_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), admin, ports.CreateEmployeeInput{
			Name: fmt.Sprintf("E%d", i), Email: fmt.Sprintf("e%d@x.io", i), Department: "Eng",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	for _, page := range []int{math.MaxInt/PageSize + 2, math.MaxInt} {
		res, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Page: page})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(res.Items) != 0 || res.Total != 3 || res.TotalPages != 1 || res.CurrentPage != page {
			t.Fatalf("page %d must be empty with the real totals: items=%d total=%d pages=%d current=%d",
				page, len(res.Items), res.Total, res.TotalPages, res.CurrentPage)
		}
	}
}

func TestEmployeeService_List_EmptyHasZeroPages(t *testing.T) {
	f := newFixture(t)
	user := f.registerBare(t, "dave", "")

	res, err := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: user})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 0 || res.TotalPages != 0 || res.CurrentPage != 1 || len(res.Items) != 0 {
		t.Fatalf("unexpected empty result %+v", res)
	}
}

func TestEmployeeService_List_SearchIsLiteralAndCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)
	for _, in := range []ports.CreateEmployeeInput{
		{Name: "Alice Smith", Email: "alice@corp.io", Department: "Eng"},
		{Name: "Bob", Email: "bob.smith@corp.io", Department: "Ops"},
		{Name: "Carol", Email: "carol@corp.io", Department: "Ops"},
	} {
		if _, err := f.svc.Create(context.Background(), admin, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, _ := f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Search: "SMITH"})
	if res.Total != 2 {
		t.Fatalf("expected 2 matches on name or email, got %d", res.Total)
	}

	res, _ = f.svc.List(context.Background(), ports.ListEmployeesInput{Caller: admin, Search: ".*"})
	if res.Total != 0 {
		t.Fatalf("search text must not be interpreted as a pattern, got %d matches", res.Total)
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestEmployeeService_Create_AdminOnly(t *testing.T) {
	f := newFixture(t)
	user := f.registerBare(t, "alice", "")

	_, err := f.svc.Create(context.Background(), user, ports.CreateEmployeeInput{Name: "X", Email: "x@x.io", Department: "Eng"})
	if !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
}

func TestEmployeeService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	tests := []struct {
		in  ports.CreateEmployeeInput
		msg string
	}{
		{ports.CreateEmployeeInput{Email: "x@x.io", Department: "Eng"}, "name is required"},
		{ports.CreateEmployeeInput{Name: "X", Email: "  ", Department: "Eng"}, "email is required"},
		{ports.CreateEmployeeInput{Name: "X", Email: "x@x.io"}, "department is required"},
	}
	for _, tt := range tests {
		_, err := f.svc.Create(context.Background(), admin, tt.in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Message != tt.msg {
			t.Errorf("expected %q, got %v", tt.msg, err)
		}
	}
}

func TestEmployeeService_Create_OwnerMustExist(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)
	alice := f.registerBare(t, "alice", "")

	_, err := f.svc.Create(context.Background(), admin, ports.CreateEmployeeInput{
		Name: "X", Email: "x@x.io", Department: "Eng", OwnerID: "65f0c0ffee0000000000abcd",
	})
	if !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}

	view, err := f.svc.Create(context.Background(), admin, ports.CreateEmployeeInput{
		Name: "X", Email: "x@x.io", Department: "Eng", OwnerID: alice.UserID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.OwnerID != alice.UserID || view.Owner == nil || view.Owner.Username != "alice" {
		t.Fatalf("owner not linked: %+v", view)
	}
}

func TestEmployeeService_Create_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)
	in := ports.CreateEmployeeInput{Name: "X", Email: "x@x.io", Department: "Eng"}

	if _, err := f.svc.Create(context.Background(), admin, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), admin, in); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Get / Update / Delete
// ---------------------------------------------------------------------------

func TestEmployeeService_Get_AccessRule(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob, _ := f.register(t, "bob", "", "b@x.io")
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	if _, err := f.svc.Get(context.Background(), alice, aliceEmp); err != nil {
		t.Errorf("owner must read own record: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), admin, aliceEmp); err != nil {
		t.Errorf("admin must read any record: %v", err)
	}
	view, err := f.svc.Get(context.Background(), bob, aliceEmp)
	if !errors.Is(err, domain.ErrForbidden) || view != nil {
		t.Errorf("foreign read must be forbidden without a body, got %v / %+v", err, view)
	}
}

func TestEmployeeService_Get_NotFound(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	for _, id := range []string{"65f0c0ffee0000000000abcd", "not-an-id"} {
		if _, err := f.svc.Get(context.Background(), admin, id); !errors.Is(err, domain.ErrEmployeeNotFound) {
			t.Errorf("%s: expected ErrEmployeeNotFound, got %v", id, err)
		}
	}
}

func TestEmployeeService_UnownedRecordIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBare(t, "root", domain.RoleAdmin)
	user := f.registerBare(t, "alice", "")

	view, err := f.svc.Create(context.Background(), admin, ports.CreateEmployeeInput{Name: "U", Email: "u@x.io", Department: "Ops"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), user, view.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEmployeeService_Update_PartialMerge(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")

	view, err := f.svc.Update(context.Background(), alice, aliceEmp, domain.EmployeePatch{Department: strPtr(" Ops ")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.Department != "Ops" || view.Name != "alice" || view.Email != "a@x.io" {
		t.Fatalf("unexpected merge result %+v", view)
	}

	if got := f.audit.actions(); got[len(got)-1] != domain.AuditUpdated {
		t.Fatalf("expected updated audit event, got %v", got)
	}
}

func TestEmployeeService_Update_Rules(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob, _ := f.register(t, "bob", "", "b@x.io")
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	tests := []struct {
		name   string
		caller domain.Caller
		id     string
		patch  domain.EmployeePatch
		want   error
	}{
		{"foreign record", bob, aliceEmp, domain.EmployeePatch{Name: strPtr("x")}, domain.ErrForbidden},
		{"unknown id", admin, "65f0c0ffee0000000000abcd", domain.EmployeePatch{Name: strPtr("x")}, domain.ErrEmployeeNotFound},
		{"empty name", alice, aliceEmp, domain.EmployeePatch{Name: strPtr("  ")}, domain.ErrValidation},
		{"duplicate email", alice, aliceEmp, domain.EmployeePatch{Email: strPtr("b@x.io")}, domain.ErrEmailExists},
		{"owner change by user", alice, aliceEmp, domain.EmployeePatch{OwnerID: strPtr(bob.UserID)}, domain.ErrForbidden},
		{"unknown owner", admin, aliceEmp, domain.EmployeePatch{OwnerID: strPtr("65f0c0ffee0000000000abcd")}, domain.ErrOwnerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Update(context.Background(), tt.caller, tt.id, tt.patch)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// Nothing above may have changed the record.
	view, _ := f.svc.Get(context.Background(), admin, aliceEmp)
	if view.Name != "alice" || view.Email != "a@x.io" || view.OwnerID != alice.UserID {
		t.Fatalf("record changed by a rejected update: %+v", view)
	}
}

func TestEmployeeService_Update_AdminReassignsOwner(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob := f.registerBare(t, "bob", "")
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	view, err := f.svc.Update(context.Background(), admin, aliceEmp, domain.EmployeePatch{OwnerID: strPtr(bob.UserID)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.OwnerID != bob.UserID || view.Owner.Username != "bob" {
		t.Fatalf("owner not reassigned: %+v", view)
	}

	if _, err := f.svc.Get(context.Background(), alice, aliceEmp); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("previous owner must lose access, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), bob, aliceEmp); err != nil {
		t.Fatalf("new owner must gain access: %v", err)
	}
}

func TestEmployeeService_Update_SameOwnerByUserAllowed(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")

	if _, err := f.svc.Update(context.Background(), alice, aliceEmp, domain.EmployeePatch{OwnerID: strPtr(alice.UserID)}); err != nil {
		t.Fatalf("re-sending the current owner must be accepted: %v", err)
	}
}

func TestEmployeeService_Update_EmptyPatchIsNoop(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	before := len(f.audit.actions())

	if _, err := f.svc.Update(context.Background(), alice, aliceEmp, domain.EmployeePatch{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.audit.actions()) != before {
		t.Fatalf("empty patch must not be audited")
	}
}

func TestEmployeeService_Delete(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob, _ := f.register(t, "bob", "", "b@x.io")

	if err := f.svc.Delete(context.Background(), bob, aliceEmp); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), alice, aliceEmp); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), alice, aliceEmp); !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("second delete must be 404, got %v", err)
	}

	got := f.audit.actions()
	if got[len(got)-1] != domain.AuditDeleted {
		t.Fatalf("expected deleted audit event, got %v", got)
	}
}

func TestEmployeeService_DanglingOwnerStillReadable(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	admin := f.registerBare(t, "root", domain.RoleAdmin)

	if err := f.users.Delete(context.Background(), alice.UserID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	view, err := f.svc.Get(context.Background(), admin, aliceEmp)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.OwnerID != alice.UserID || view.Owner != nil {
		t.Fatalf("expected owner id without summary, got %+v", view)
	}
}

func TestServices_ReportMetrics(t *testing.T) {
	f := newFixture(t)
	alice, aliceEmp := f.register(t, "alice", "", "a@x.io")
	bob, _ := f.register(t, "bob", "", "b@x.io")

	if _, err := f.auth.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	if _, err := f.svc.Get(context.Background(), bob, aliceEmp); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), alice, ports.CreateEmployeeInput{Name: "X", Email: "x@x.io", Department: "Eng"}); !errors.Is(err, domain.ErrAdminOnly) {
		t.Fatalf("expected admin only, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), alice, aliceEmp); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := map[string]int{
		"auth:register:success": 2,
		"auth:login:failure":    1,
		"mutation:created":      2,
		"mutation:deleted":      1,
		"denied:not_owner":      1,
		"denied:admin_only":     1,
	}
	for key, n := range want {
		if got := f.metrics.get(key); got != n {
			t.Errorf("%s = %d, want %d", key, got, n)
		}
	}
}
