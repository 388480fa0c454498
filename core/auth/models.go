package auth

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hydrofarm/core"
)

// ClassLoginRequest is the class-code login form.
type ClassLoginRequest struct {
	Code string `json:"code" validate:"required,max=20,classcode"`
}

func (r *ClassLoginRequest) Validate(validate *validator.Validate) error {
	r.Code = core.CleanString(r.Code)
	return validate.Struct(r)
}

// AdminLoginRequest is the administrator login form.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *AdminLoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

type ClassInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

type ClassLogin struct {
	Token string    `json:"token"`
	Role  string    `json:"role"` // "student" | "guest"
	Class ClassInfo `json:"class"`
}

type AdminInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
}

type AdminLogin struct {
	Token string    `json:"token"`
	Admin AdminInfo `json:"admin"`
}
