package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
)

const (
	classesPath = "/admin/classes"
	bedsPath    = "/admin/hydro_beds"
)

// Service is the admin CRUD client. The verb that reaches the wire is up to the backend's verb strategy.
type Service struct {
	backend  core.Backend
	validate *validator.Validate
}

func NewService(backend core.Backend, validate *validator.Validate) *Service {
	return &Service{backend: backend, validate: validate}
}

func (svc *Service) Classes(ctx context.Context) ([]Class, error) {
	var classes []Class
	err := svc.backend.Do(ctx, http.MethodGet, classesPath, nil, &classes)
	return classes, errors.Wrap(err, "listing classes")
}

func (svc *Service) CreateClass(ctx context.Context, form ClassForm) (Class, error) {
	if err := form.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	var class Class
	err := svc.backend.Do(ctx, http.MethodPost, classesPath, form, &class)
	return class, errors.Wrap(err, "creating class")
}

func (svc *Service) UpdateClass(ctx context.Context, id int, form ClassForm) (Class, error) {
	if err := form.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	var class Class
	err := svc.backend.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", classesPath, id), form, &class)
	return class, errors.Wrap(err, "updating class")
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	err := svc.backend.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", classesPath, id), nil, nil)
	return errors.Wrap(err, "deleting class")
}

func (svc *Service) HydroBeds(ctx context.Context) ([]HydroBed, error) {
	var beds []HydroBed
	err := svc.backend.Do(ctx, http.MethodGet, bedsPath, nil, &beds)
	return beds, errors.Wrap(err, "listing hydro beds")
}

func (svc *Service) CreateHydroBed(ctx context.Context, form HydroBedForm) (HydroBed, error) {
	form.Status = ""
	if err := form.Validate(svc.validate); err != nil {
		return HydroBed{}, err
	}
	var bed HydroBed
	err := svc.backend.Do(ctx, http.MethodPost, bedsPath, form, &bed)
	return bed, errors.Wrap(err, "creating hydro bed")
}

// UpdateHydroBed requires the status, unlike creation.
func (svc *Service) UpdateHydroBed(ctx context.Context, id int, form HydroBedForm) (HydroBed, error) {
	if err := form.Validate(svc.validate); err != nil {
		return HydroBed{}, err
	}
	if form.Status == "" {
		return HydroBed{}, core.NewValidationError(
			errors.New("status is required"),
			core.FieldError{Field: "status", Error: "this field is required"},
		)
	}
	var bed HydroBed
	err := svc.backend.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", bedsPath, id), form, &bed)
	return bed, errors.Wrap(err, "updating hydro bed")
}

func (svc *Service) DeleteHydroBed(ctx context.Context, id int) error {
	err := svc.backend.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", bedsPath, id), nil, nil)
	return errors.Wrap(err, "deleting hydro bed")
}
