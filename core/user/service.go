package user

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactive           = errors.New("inactive user")
)

type (
	Repository interface {
		CreateUser(usr User) (User, error)
		GetUserByID(id int) (User, error)
		GetUserByEmail(email string) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nu NewUser) (User, error) {
	if _, err := svc.repo.GetUserByEmail(nu.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	usr := User{
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

// Authenticate checks the credentials; unknown emails and wrong passwords look the same to the caller.
func (svc *Service) Authenticate(creds Credentials) (User, error) {
	usr, err := svc.repo.GetUserByEmail(creds.Username)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrInactive
	}
	return usr, nil
}
