package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/user"
)

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) CheckMuidUniqueness(ctx context.Context, muid string) error {
	found, err := exists(ctx, repo.exec, builder.Select("id").From("users").Where(sq.Eq{"muid": muid}))
	if err != nil {
		return errors.Wrap(err, "checking muid uniqueness")
	}
	if found {
		return user.ErrMuidExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	usr.CreatedAt = usr.CreatedAt.UTC()
	_, err := execute(ctx, repo.exec, builder.Insert("users").SetMap(map[string]interface{}{
		"id":         usr.ID,
		"full_name":  usr.FullName,
		"muid":       usr.Muid,
		"email":      usr.Email,
		"mobile":     usr.Mobile,
		"created_at": usr.CreatedAt,
	}))
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	qb := builder.Select("id", "full_name", "muid", "email", "mobile", "created_at").From("users")
	switch {
	case filter.ID != "":
		qb = qb.Where(sq.Eq{"id": filter.ID})
	case filter.Muid != "":
		qb = qb.Where(sq.Eq{"muid": filter.Muid})
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := selectOne(ctx, repo.exec, &usr, qb); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}

	usr.Roles = []string{}
	q := builder.Select("role").From("user_role_link").Where(sq.Eq{"user_id": usr.ID}).OrderBy("role")
	if err := selectAll(ctx, repo.exec, &usr.Roles, q); err != nil {
		return user.User{}, errors.Wrap(err, "getting user roles")
	}
	return usr, nil
}

func (repo userRepository) AddRoles(ctx context.Context, userID string, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	qb := builder.Insert("user_role_link").Columns("user_id", "role")
	for _, role := range roles {
		qb = qb.Values(userID, role)
	}
	if _, err := execute(ctx, repo.exec, qb); err != nil {
		return errors.Wrap(err, "adding user roles")
	}
	return nil
}
