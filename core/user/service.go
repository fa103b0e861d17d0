package user

import (
	"context"
	"errors"

	"github.com/trezcool/campusdash/core"
)

var (
	// errors
	ErrNotFound   = errors.New("user not found")
	ErrMuidExists = errors.New("a user with this muid already exists")
)

type (
	Repository interface {
		CheckMuidUniqueness(ctx context.Context, muid string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		AddRoles(ctx context.Context, userID string, roles ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.repo.CheckMuidUniqueness(ctx, nu.Muid); err != nil {
		if err == ErrMuidExists {
			return User{}, core.NewFieldError("muid", err.Error())
		}
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, User{
		FullName:  nu.FullName,
		Muid:      nu.Muid,
		Email:     nu.Email,
		Mobile:    nu.Mobile,
		CreatedAt: core.Now(),
	})
	if err != nil {
		return User{}, err
	}
	if len(nu.Roles) > 0 {
		if err = svc.repo.AddRoles(ctx, usr.ID, nu.Roles...); err != nil {
			return User{}, err
		}
		usr.Roles = nu.Roles
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByMuid(ctx context.Context, muid string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Muid: core.CleanString(muid, true /* lower */)})
}

func (svc *Service) AddRoles(ctx context.Context, usr User, roles ...string) (User, error) {
	var missing []string
	for _, role := range roles {
		if !usr.HasRole(role) {
			missing = append(missing, role)
		}
	}
	if len(missing) == 0 {
		return usr, nil
	}
	if err := svc.repo.AddRoles(ctx, usr.ID, missing...); err != nil {
		return User{}, err
	}
	usr.Roles = append(usr.Roles, missing...)
	return usr, nil
}
