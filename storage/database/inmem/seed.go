package inmemdb

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/farm"
)

// Demo credentials loaded by Seed
const (
	SeedClassCode     = "ABC123"
	SeedGuestCode     = "GUEST7"
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "hydro-admin"
)

func ptr(f float64) *float64 { return &f }
func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

// SeedOptions overrides the demo admin credentials.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed loads a demo farm: two classes, their beds, a week of hourly readings up to now, to-dos, badges and quizzes.
func Seed(db *DB, now time.Time, opts SeedOptions) error {
	if opts.AdminEmail == "" {
		opts.AdminEmail = SeedAdminEmail
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = SeedAdminPassword
	}

	adm := farm.Admin{ID: 1, Name: "Ms. Tanaka", Email: strings.ToLower(opts.AdminEmail), SchoolName: "Midori Elementary"}
	if err := adm.SetPassword(opts.AdminPassword); err != nil {
		return errors.Wrap(err, "hashing admin password")
	}

	now = now.UTC().Truncate(time.Hour)
	planted := now.Add(-12 * 24 * time.Hour)

	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.admins[adm.ID] = &adm
	db.reservePK("admins", adm.ID)

	classes := []farm.Class{
		{ID: 7, Name: "Sunflower", Code: SeedClassCode, GuestCode: SeedGuestCode, Locale: "ja", CreatedAt: planted},
		{ID: 9, Name: "Tulip", Code: "XYZ789", GuestCode: "GUEST9", Locale: "ja", CreatedAt: planted},
	}
	for i := range classes {
		c := classes[i]
		db.classes[c.ID] = &c
		db.reservePK("classes", c.ID)
	}

	beds := []farm.Bed{
		{ID: 1, ClassID: 7, Name: "Bed A", DeviceID: "esp32-0001", Location: "Science room", Status: "active", CropName: strPtr("Lettuce"), PlantedAt: &planted},
		{ID: 2, ClassID: 9, Name: "Bed B", DeviceID: "esp32-0002", Location: "Hallway", Status: "inactive"},
	}
	for i := range beds {
		b := beds[i]
		db.beds[b.ID] = &b
		db.reservePK("beds", b.ID)
	}

	// bed A follows a daily cycle; bed B has no sensor yet
	for h := 7 * 24; h >= 0; h-- {
		at := now.Add(-time.Duration(h) * time.Hour)
		phase := 2 * math.Pi * float64(at.Hour()) / 24
		db.readings = append(db.readings, farm.Reading{
			BedID:       1,
			RecordedAt:  at,
			Temperature: ptr(math.Round((23+4*math.Sin(phase))*10) / 10),
			Humidity:    ptr(math.Round((55-10*math.Sin(phase))*10) / 10),
		})
	}

	todos := []farm.Todo{
		{ID: 1, ClassID: 7, Content: "Check the water level"},
		{ID: 2, ClassID: 7, Content: "Measure the plant height"},
		{ID: 3, ClassID: 7, Content: "Clean the pump filter", IsCompleted: true},
		{ID: 4, ClassID: 9, Content: "Plant the seeds"},
	}
	for i := range todos {
		t := todos[i]
		db.todos[t.ID] = &t
		db.reservePK("todos", t.ID)
	}

	badges := []farm.Badge{
		{ID: 1, Name: "Sprout Award", Threshold: 10},
		{ID: 2, Name: "Harvest Medal", ImageURL: strPtr("/badges/harvest.png"), Threshold: 50},
		{ID: 3, Name: "Master Grower Trophy", Threshold: 100},
	}
	for i := range badges {
		b := badges[i]
		db.badges[b.ID] = &b
		db.reservePK("badges", b.ID)
	}

	quizzes := []farm.Quiz{
		{
			ID:          1,
			Category:    "Plants",
			Question:    "What do plants need to make food?",
			Options:     []string{"Sunlight", "Sand", "Salt"},
			AnswerIndex: intPtr(0),
			Explanation: "Plants use sunlight to make sugar from water and air.",
		},
		{
			ID:          2,
			Category:    "Hydroponics",
			Question:    "What replaces soil in a hydroponic bed?",
			Options:     []string{"Rocks", "Nutrient water", "Nothing", "Paper"},
			AnswerIndex: intPtr(1),
			Explanation: "The roots take nutrients directly from the water.",
		},
		{
			ID:          3,
			Category:    "Environment",
			Question:    "Which temperature suits lettuce best?",
			Options:     []string{"5°C", "20°C", "40°C"},
			AnswerIndex: intPtr(1),
			Explanation: "Lettuce grows best between 15°C and 25°C.",
		},
		{
			ID:          4,
			Category:    "Opinion",
			Question:    "Which vegetable should we grow next?",
			Options:     []string{"Tomato", "Basil", "Spinach", "Strawberry", "Mint", "Pepper"},
			Explanation: "Thanks for voting!",
		},
	}
	for i := range quizzes {
		q := quizzes[i]
		db.quizzes[q.ID] = &q
		db.reservePK("quizzes", q.ID)
	}
	return nil
}
