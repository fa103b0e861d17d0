package sqlxrepos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	svc := user.NewService(NewUserRepository(testutil.OpenDB(t)))

	usr, err := svc.Create(ctx, user.NewUser{
		FullName: "Zonal Lead",
		Muid:     "lead@mulearn",
		Mobile:   "9876543210",
		Roles:    []string{user.RoleZonalCampusLead},
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEmpty(t, usr.ID)

	_, err = svc.Create(ctx, user.NewUser{FullName: "Copy", Muid: "lead@mulearn"})
	assert.Error(t, err)

	got, err := svc.GetByMuid(ctx, " LEAD@mulearn ")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, []string{user.RoleZonalCampusLead}, got.Roles)

	got, err = svc.AddRoles(ctx, got, user.RoleAdmin, user.RoleZonalCampusLead)
	if !assert.NoError(t, err) {
		return
	}
	got, err = svc.GetByID(ctx, usr.ID)
	if assert.NoError(t, err) {
		assert.ElementsMatch(t, []string{user.RoleAdmin, user.RoleZonalCampusLead}, got.Roles)
		assert.True(t, got.IsAdmin())
	}

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, user.ErrNotFound, err)
}
