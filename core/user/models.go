package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bobur6/professor-ai-helper/core"
)

// User is a teacher account of the backend.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate(v *core.Validator) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return v.Struct(nu)
}

// Credentials is the OAuth2 password form: `username` carries the email.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (c *Credentials) Validate(v *core.Validator) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return v.Struct(c)
}
