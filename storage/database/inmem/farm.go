package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/hydrofarm/core/farm"
)

type farmRepository struct {
	db *DB
}

func NewFarmRepository(db *DB) farm.Repository {
	return &farmRepository{db: db}
}

func (repo *farmRepository) AdminByEmail(email string) (farm.Admin, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, adm := range repo.db.admins {
		if strings.EqualFold(adm.Email, email) {
			return *adm, nil
		}
	}
	return farm.Admin{}, farm.ErrNotFound
}

func (repo *farmRepository) QueryClasses() ([]farm.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]farm.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, *c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *farmRepository) ClassByID(id int) (farm.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return farm.Class{}, farm.ErrNotFound
}

func (repo *farmRepository) ClassByCode(code string) (farm.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.classes {
		if strings.EqualFold(c.Code, code) || strings.EqualFold(c.GuestCode, code) {
			return *c, nil
		}
	}
	return farm.Class{}, farm.ErrNotFound
}

// codeTaken must be called with the lock held.
func (repo *farmRepository) codeTaken(class farm.Class) bool {
	for _, c := range repo.db.classes {
		if c.ID == class.ID {
			continue
		}
		for _, code := range []string{c.Code, c.GuestCode} {
			if strings.EqualFold(code, class.Code) || strings.EqualFold(code, class.GuestCode) {
				return true
			}
		}
	}
	return false
}

func (repo *farmRepository) CreateClass(class farm.Class) (farm.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.codeTaken(class) {
		return farm.Class{}, farm.ErrCodeExists
	}
	class.ID = repo.db.nextPK("classes")
	repo.db.classes[class.ID] = &class
	return class, nil
}

func (repo *farmRepository) UpdateClass(class farm.Class) (farm.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.classes[class.ID]
	if !ok {
		return farm.Class{}, farm.ErrNotFound
	}
	if repo.codeTaken(class) {
		return farm.Class{}, farm.ErrCodeExists
	}
	orig.Name = class.Name
	orig.Code = class.Code
	orig.GuestCode = class.GuestCode
	orig.Locale = class.Locale
	orig.UpdatedAt = class.UpdatedAt
	return *orig, nil
}

func (repo *farmRepository) DeleteClass(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return farm.ErrNotFound
	}
	delete(repo.db.classes, id)
	for bedID, b := range repo.db.beds {
		if b.ClassID == id {
			delete(repo.db.beds, bedID)
		}
	}
	for todoID, t := range repo.db.todos {
		if t.ClassID == id {
			delete(repo.db.todos, todoID)
		}
	}
	return nil
}

func (repo *farmRepository) beds(keep func(farm.Bed) bool) []farm.Bed {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	beds := make([]farm.Bed, 0)
	for _, b := range repo.db.beds {
		if keep(*b) {
			beds = append(beds, *b)
		}
	}
	sort.Slice(beds, func(i, j int) bool { return beds[i].ID < beds[j].ID })
	return beds
}

func (repo *farmRepository) QueryBeds() ([]farm.Bed, error) {
	return repo.beds(func(farm.Bed) bool { return true }), nil
}

func (repo *farmRepository) BedsByClass(classID int) ([]farm.Bed, error) {
	return repo.beds(func(b farm.Bed) bool { return b.ClassID == classID }), nil
}

func (repo *farmRepository) BedByID(id int) (farm.Bed, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if b, ok := repo.db.beds[id]; ok {
		return *b, nil
	}
	return farm.Bed{}, farm.ErrNotFound
}

func (repo *farmRepository) CreateBed(bed farm.Bed) (farm.Bed, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	bed.ID = repo.db.nextPK("beds")
	repo.db.beds[bed.ID] = &bed
	return bed, nil
}

func (repo *farmRepository) UpdateBed(bed farm.Bed) (farm.Bed, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.beds[bed.ID]; !ok {
		return farm.Bed{}, farm.ErrNotFound
	}
	repo.db.beds[bed.ID] = &bed
	return bed, nil
}

func (repo *farmRepository) DeleteBed(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.beds[id]; !ok {
		return farm.ErrNotFound
	}
	delete(repo.db.beds, id)
	return nil
}

func (repo *farmRepository) Readings(bedID int, since time.Time) ([]farm.Reading, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	readings := make([]farm.Reading, 0)
	for _, r := range repo.db.readings {
		if r.BedID == bedID && !r.RecordedAt.Before(since) {
			readings = append(readings, r)
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].RecordedAt.Before(readings[j].RecordedAt) })
	return readings, nil
}

func (repo *farmRepository) TodosByClass(classID int) ([]farm.Todo, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	todos := make([]farm.Todo, 0)
	for _, t := range repo.db.todos {
		if t.ClassID == classID {
			todos = append(todos, *t)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (repo *farmRepository) SetTodoCompleted(classID, todoID int, completed bool) (farm.Todo, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t, ok := repo.db.todos[todoID]
	if !ok || t.ClassID != classID {
		return farm.Todo{}, farm.ErrNotFound
	}
	t.IsCompleted = completed
	return *t, nil
}

func (repo *farmRepository) QueryBadges() ([]farm.Badge, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	badges := make([]farm.Badge, 0, len(repo.db.badges))
	for _, b := range repo.db.badges {
		badges = append(badges, *b)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}

func (repo *farmRepository) QueryQuizzes() ([]farm.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	quizzes := make([]farm.Quiz, 0, len(repo.db.quizzes))
	for _, q := range repo.db.quizzes {
		quizzes = append(quizzes, *q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (repo *farmRepository) AnswersOn(classID int, day string) ([]farm.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	answers := make([]farm.Answer, 0)
	for _, a := range repo.db.answers {
		if a.ClassID == classID && a.Day == day {
			answers = append(answers, a)
		}
	}
	return answers, nil
}

func (repo *farmRepository) SaveAnswer(answer farm.Answer, maxPointAnswers int) (farm.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	c, ok := repo.db.classes[answer.ClassID]
	if !ok {
		return farm.Answer{}, farm.ErrNotFound
	}

	earned := 0
	for _, a := range repo.db.answers {
		if a.ClassID != answer.ClassID || a.Day != answer.Day {
			continue
		}
		if a.QuizID == answer.QuizID {
			return farm.Answer{}, farm.ErrAlreadyAnswered
		}
		if a.PointsEarned > 0 {
			earned++
		}
	}
	if earned >= maxPointAnswers {
		answer.PointsEarned = 0
	}

	repo.db.answers = append(repo.db.answers, answer)
	c.Points += answer.PointsEarned
	return answer, nil
}

func (repo *farmRepository) RevokeToken(id string, exp time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// forget revocations of tokens that expired anyway
	now := time.Now()
	for jti, e := range repo.db.revoked {
		if e.Before(now) {
			delete(repo.db.revoked, jti)
		}
	}
	repo.db.revoked[id] = exp
	return nil
}

func (repo *farmRepository) IsTokenRevoked(id string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.revoked[id]
	return ok, nil
}
