package dashboard

import (
	"time"

	"github.com/trezcool/hydrofarm/core/todo"
)

// sensor statuses
const (
	StatusGood    = "good"
	StatusWarning = "warning"
	StatusBad     = "bad"
)

type SensorStatus struct {
	Value  *float64 `json:"value"`
	Status string   `json:"status"` // good | warning | bad
}

type Sensors struct {
	Temperature SensorStatus `json:"temperature"`
	Humidity    SensorStatus `json:"humidity"`
}

type Bed struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	CropName    *string `json:"crop_name"`
	DaysElapsed *int    `json:"days_elapsed"`
	Sensors     Sensors `json:"sensors"`
}

type Badge struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
	Acquired bool    `json:"acquired"`
}

type Dashboard struct {
	ClassName string      `json:"class_name"`
	Beds      []Bed       `json:"beds"`
	Todos     []todo.Todo `json:"todos"`
	Badges    []Badge     `json:"badges"`
}

type Range string

const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
)

func (r Range) Valid() bool {
	return r == Range24h || r == Range7d
}

type GraphPoint struct {
	RecordedAt  time.Time `json:"recorded_at"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
}

type Graph struct {
	Range Range        `json:"range"`
	Data  []GraphPoint `json:"data"`
}

type UpdateTodoRequest struct {
	IsCompleted bool `json:"is_completed"`
}
