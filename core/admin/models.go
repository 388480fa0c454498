package admin

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/hydrofarm/core"
)

// bed statuses
const (
	BedActive   = "active"
	BedInactive = "inactive"
)

// Info is the signed-in administrator.
type Info struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
}

type Class struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ClassRef struct {
	Name string `json:"name"`
}

type HydroBed struct {
	ID        int       `json:"id"`
	ClassID   int       `json:"class_id"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"device_id"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
	ClassName string    `json:"class_name,omitempty"`
	Class     *ClassRef `json:"class,omitempty"`
}

// DisplayClassName returns the name of the owning class, whichever way the backend sent it.
func (b HydroBed) DisplayClassName() string {
	if b.ClassName != "" {
		return b.ClassName
	}
	if b.Class != nil {
		return b.Class.Name
	}
	return ""
}

type ClassForm struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (f *ClassForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}

type HydroBedForm struct {
	ClassID  int    `json:"class_id" validate:"required,min=1"`
	Name     string `json:"name" validate:"required,max=50"`
	DeviceID string `json:"device_id" validate:"required,max=64"`
	Location string `json:"location" validate:"max=100"`
	Status   string `json:"status,omitempty" validate:"omitempty,bedstatus"`
}

func (f *HydroBedForm) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	f.DeviceID = core.CleanString(f.DeviceID)
	f.Location = core.CleanString(f.Location)
	f.Status = core.CleanString(f.Status, true /* lower */)
	return validate.Struct(f)
}
