// Package dbtest holds behaviour suites shared by every repository
// implementation, so the memory and Mongo stores stay interchangeable.
package dbtest

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// Stores is a fresh, empty set of repositories.
type Stores struct {
	Users     ports.UserRepository
	Employees ports.EmployeeRepository
}

// Factory returns empty stores for one subtest.
type Factory func(t *testing.T) Stores

const unknownID = "65f0c0ffee0000000000abcd"

// RunUserRepository exercises the UserRepository contract.
func RunUserRepository(t *testing.T, newStores Factory) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		users := newStores(t).Users

		created, err := users.Create(ctx, &domain.User{Username: "alice", PasswordHash: "h", Role: domain.RoleUser})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		byName, err := users.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, created, byName)

		byID, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "h", byID.PasswordHash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		users := newStores(t).Users

		_, err := users.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h", Role: domain.RoleUser})
		require.NoError(t, err)
		_, err = users.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h2", Role: domain.RoleAdmin})
		require.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("not found", func(t *testing.T) {
		users := newStores(t).Users

		_, err := users.FindByUsername(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = users.FindByID(ctx, unknownID)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = users.FindByID(ctx, "malformed")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.ErrorIs(t, users.Delete(ctx, unknownID), domain.ErrUserNotFound)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		users := newStores(t).Users

		a, err := users.Create(ctx, &domain.User{Username: "a", Role: domain.RoleUser})
		require.NoError(t, err)
		b, err := users.Create(ctx, &domain.User{Username: "b", Role: domain.RoleAdmin})
		require.NoError(t, err)

		found, err := users.FindByIDs(ctx, []string{a.ID, unknownID, b.ID})
		require.NoError(t, err)
		require.Len(t, found, 2)
	})

	t.Run("delete frees username", func(t *testing.T) {
		users := newStores(t).Users

		u, err := users.Create(ctx, &domain.User{Username: "carol", Role: domain.RoleUser})
		require.NoError(t, err)
		require.NoError(t, users.Delete(ctx, u.ID))

		_, err = users.FindByID(ctx, u.ID)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = users.Create(ctx, &domain.User{Username: "carol", Role: domain.RoleUser})
		require.NoError(t, err)
	})
}

// RunEmployeeRepository exercises the EmployeeRepository contract.
func RunEmployeeRepository(t *testing.T, newStores Factory) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	newOwner := func(t *testing.T, s Stores, name string) string {
		u, err := s.Users.Create(ctx, &domain.User{Username: name, Role: domain.RoleUser})
		require.NoError(t, err)
		return u.ID
	}

	t.Run("create and find", func(t *testing.T) {
		s := newStores(t)
		owner := newOwner(t, s, "alice")

		created, err := s.Employees.Create(ctx, &domain.Employee{
			Name: "Alice", Email: "a@x.io", Department: "Eng", OwnerID: owner, CreatedAt: base,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := s.Employees.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.Name, got.Name)
		require.Equal(t, owner, got.OwnerID)
		require.True(t, base.Equal(got.CreatedAt))

		byOwner, err := s.Employees.FindByOwner(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, created.ID, byOwner.ID)
	})

	t.Run("not found and malformed ids", func(t *testing.T) {
		s := newStores(t)

		for _, id := range []string{unknownID, "malformed"} {
			_, err := s.Employees.FindByID(ctx, id)
			require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
			_, err = s.Employees.Update(ctx, id, domain.EmployeePatch{Name: ptr("x")})
			require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
			require.ErrorIs(t, s.Employees.Delete(ctx, id), domain.ErrEmployeeNotFound)
		}
		_, err := s.Employees.FindByOwner(ctx, unknownID)
		require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newStores(t)

		_, err := s.Employees.Create(ctx, &domain.Employee{Name: "A", Email: "dup@x.io", Department: "Eng", CreatedAt: base})
		require.NoError(t, err)
		other, err := s.Employees.Create(ctx, &domain.Employee{Name: "B", Email: "b@x.io", Department: "Eng", CreatedAt: base})
		require.NoError(t, err)

		_, err = s.Employees.Create(ctx, &domain.Employee{Name: "C", Email: "dup@x.io", Department: "Eng", CreatedAt: base})
		require.ErrorIs(t, err, domain.ErrEmailExists)
		_, err = s.Employees.Update(ctx, other.ID, domain.EmployeePatch{Email: ptr("dup@x.io")})
		require.ErrorIs(t, err, domain.ErrEmailExists)

		// Keeping one's own email is not a conflict.
		_, err = s.Employees.Update(ctx, other.ID, domain.EmployeePatch{Email: ptr("b@x.io")})
		require.NoError(t, err)
	})

	t.Run("update merges and unlinks owner", func(t *testing.T) {
		s := newStores(t)
		owner := newOwner(t, s, "alice")

		e, err := s.Employees.Create(ctx, &domain.Employee{Name: "A", Email: "a@x.io", Department: "Eng", OwnerID: owner, CreatedAt: base})
		require.NoError(t, err)

		updated, err := s.Employees.Update(ctx, e.ID, domain.EmployeePatch{Department: ptr("Ops")})
		require.NoError(t, err)
		require.Equal(t, "Ops", updated.Department)
		require.Equal(t, "A", updated.Name)
		require.Equal(t, owner, updated.OwnerID)

		unlinked, err := s.Employees.Update(ctx, e.ID, domain.EmployeePatch{OwnerID: ptr("")})
		require.NoError(t, err)
		require.Empty(t, unlinked.OwnerID)

		_, err = s.Employees.FindByOwner(ctx, owner)
		require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	})

	t.Run("list filters sorts and pages", func(t *testing.T) {
		s := newStores(t)
		alice := newOwner(t, s, "alice")
		bob := newOwner(t, s, "bob")

		for i := 0; i < 12; i++ {
			owner := alice
			if i%3 == 0 {
				owner = bob
			}
			_, err := s.Employees.Create(ctx, &domain.Employee{
				Name:       fmt.Sprintf("Emp %02d", i),
				Email:      fmt.Sprintf("emp%02d@corp.io", i),
				Department: "Eng",
				OwnerID:    owner,
				CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			})
			require.NoError(t, err)
		}

		page1, total, err := s.Employees.List(ctx, ports.EmployeeListFilter{Page: 1, Limit: 5})
		require.NoError(t, err)
		require.EqualValues(t, 12, total)
		require.Len(t, page1, 5)
		require.Equal(t, "Emp 11", page1[0].Name)

		page3, _, err := s.Employees.List(ctx, ports.EmployeeListFilter{Page: 3, Limit: 5})
		require.NoError(t, err)
		require.Len(t, page3, 2)
		require.Equal(t, "Emp 00", page3[1].Name)

		beyond, total, err := s.Employees.List(ctx, ports.EmployeeListFilter{Page: 4, Limit: 5})
		require.NoError(t, err)
		require.Empty(t, beyond)
		require.EqualValues(t, 12, total)

		huge, total, err := s.Employees.List(ctx, ports.EmployeeListFilter{Page: math.MaxInt/5 + 3, Limit: 5})
		require.NoError(t, err)
		require.Empty(t, huge, "an offset past MaxInt must not wrap back to the first page")
		require.EqualValues(t, 12, total)

		_, total, err = s.Employees.List(ctx, ports.EmployeeListFilter{OwnerID: bob, Page: 1, Limit: 10})
		require.NoError(t, err)
		require.EqualValues(t, 4, total)

		found, total, err := s.Employees.List(ctx, ports.EmployeeListFilter{Search: "EMP07", Page: 1, Limit: 10})
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		require.Equal(t, "Emp 07", found[0].Name)

		_, total, err = s.Employees.List(ctx, ports.EmployeeListFilter{Search: "emp.*", Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Zero(t, total, "search must match literally")

		_, total, err = s.Employees.List(ctx, ports.EmployeeListFilter{OwnerID: "malformed", Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("created at ties break on id", func(t *testing.T) {
		s := newStores(t)

		first, err := s.Employees.Create(ctx, &domain.Employee{Name: "First", Email: "1@x.io", Department: "Eng", CreatedAt: base})
		require.NoError(t, err)
		second, err := s.Employees.Create(ctx, &domain.Employee{Name: "Second", Email: "2@x.io", Department: "Eng", CreatedAt: base})
		require.NoError(t, err)

		items, _, err := s.Employees.List(ctx, ports.EmployeeListFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Equal(t, []string{second.ID, first.ID}, []string{items[0].ID, items[1].ID})
	})

	t.Run("delete", func(t *testing.T) {
		s := newStores(t)

		e, err := s.Employees.Create(ctx, &domain.Employee{Name: "A", Email: "a@x.io", Department: "Eng", CreatedAt: base})
		require.NoError(t, err)
		require.NoError(t, s.Employees.Delete(ctx, e.ID))
		_, err = s.Employees.FindByID(ctx, e.ID)
		require.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	})
}

func ptr(s string) *string { return &s }
