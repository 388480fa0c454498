// Package farm is the server side of the classroom farm: classes, beds, readings, to-dos and quizzes.
package farm

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles carried by class tokens
const (
	RoleStudent = "student"
	RoleGuest   = "guest"
	RoleAdmin   = "admin"
)

const (
	PointsPerAnswer     = 10
	DailyPointChances   = 3
	defaultClassLocale  = "ja"
	defaultBedStatus    = "active"
	sensorHistoryPeriod = 7 * 24 * time.Hour
)

type Admin struct {
	ID           int
	Name         string
	Email        string
	SchoolName   string
	PasswordHash []byte
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

type Class struct {
	ID        int
	Name      string
	Code      string // student login code
	GuestCode string // read-only login code
	Locale    string
	Points    int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Bed struct {
	ID        int
	ClassID   int
	Name      string
	DeviceID  string
	Location  string
	Status    string
	CropName  *string
	PlantedAt *time.Time
}

type Reading struct {
	BedID       int
	RecordedAt  time.Time
	Temperature *float64
	Humidity    *float64
}

type Todo struct {
	ID          int
	ClassID     int
	Content     string
	IsCompleted bool
}

type Badge struct {
	ID        int
	Name      string
	ImageURL  *string
	Threshold int // points needed
}

type Quiz struct {
	ID          int
	Category    string
	Question    string
	Options     []string
	AnswerIndex *int // nil for opinion questions
	Explanation string
}

// Answer is one quiz answered by a class on a given day.
type Answer struct {
	ClassID      int
	QuizID       int
	Day          string // 2006-01-02 in the farm timezone
	IsCorrect    bool
	PointsEarned int
}
