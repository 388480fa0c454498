package farm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/learning"
	"github.com/trezcool/hydrofarm/core/todo"
)

var (
	// errors
	ErrNotFound           = errors.New("not found")
	ErrCodeExists         = errors.New("a class with this code already exists")
	ErrInvalidCode        = errors.New("invalid class code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownQuiz        = errors.New("this quiz is not today's quiz")
	ErrAlreadyAnswered    = errors.New("quiz already answered today")
)

type (
	Repository interface {
		AdminByEmail(email string) (Admin, error)

		QueryClasses() ([]Class, error)
		ClassByID(id int) (Class, error)
		// ClassByCode matches both student and guest codes.
		ClassByCode(code string) (Class, error)
		CreateClass(class Class) (Class, error)
		UpdateClass(class Class) (Class, error)
		DeleteClass(id int) error

		QueryBeds() ([]Bed, error)
		BedsByClass(classID int) ([]Bed, error)
		BedByID(id int) (Bed, error)
		CreateBed(bed Bed) (Bed, error)
		UpdateBed(bed Bed) (Bed, error)
		DeleteBed(id int) error

		Readings(bedID int, since time.Time) ([]Reading, error)

		TodosByClass(classID int) ([]Todo, error)
		SetTodoCompleted(classID, todoID int, completed bool) (Todo, error)

		QueryBadges() ([]Badge, error)

		QueryQuizzes() ([]Quiz, error)
		AnswersOn(classID int, day string) ([]Answer, error)
		// SaveAnswer atomically stores the answer and credits its points to the class.
		// It fails with ErrAlreadyAnswered when the class answered that quiz on that day,
		// and zeroes the points once maxPointAnswers answers of the day earned some.
		SaveAnswer(answer Answer, maxPointAnswers int) (Answer, error)

		RevokeToken(id string, exp time.Time) error
		IsTokenRevoked(id string) (bool, error)
	}

	Service struct {
		repo     Repository
		location *time.Location
	}
)

// NewService returns the farm service. Days (quiz of the day, point chances) follow loc.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, location: loc}
}

// AuthenticateClass resolves a login code to its class and the role it grants.
func (svc *Service) AuthenticateClass(code string) (Class, string, error) {
	code = core.CleanString(code)
	class, err := svc.repo.ClassByCode(code)
	if err != nil {
		if err == ErrNotFound {
			return Class{}, "", ErrInvalidCode
		}
		return Class{}, "", errors.Wrap(err, "finding class by code")
	}
	role := RoleStudent
	if strings.EqualFold(class.GuestCode, code) {
		role = RoleGuest
	}
	return class, role, nil
}

func (svc *Service) AuthenticateAdmin(email, pwd string) (Admin, error) {
	adm, err := svc.repo.AdminByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return Admin{}, ErrInvalidCredentials
		}
		return Admin{}, errors.Wrap(err, "finding admin by email")
	}
	if err := adm.CheckPassword(pwd); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return adm, nil
}

func (svc *Service) Dashboard(classID int, now time.Time) (dashboard.Dashboard, error) {
	class, err := svc.repo.ClassByID(classID)
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	beds, err := svc.repo.BedsByClass(classID)
	if err != nil {
		return dashboard.Dashboard{}, errors.Wrap(err, "querying beds")
	}
	todos, err := svc.repo.TodosByClass(classID)
	if err != nil {
		return dashboard.Dashboard{}, errors.Wrap(err, "querying todos")
	}
	badges, err := svc.repo.QueryBadges()
	if err != nil {
		return dashboard.Dashboard{}, errors.Wrap(err, "querying badges")
	}

	dash := dashboard.Dashboard{
		ClassName: class.Name,
		Beds:      make([]dashboard.Bed, 0, len(beds)),
		Todos:     make([]todo.Todo, 0, len(todos)),
		Badges:    make([]dashboard.Badge, 0, len(badges)),
	}
	for _, b := range beds {
		latest, err := svc.latestReading(b.ID, now)
		if err != nil {
			return dashboard.Dashboard{}, err
		}
		dash.Beds = append(dash.Beds, dashboard.Bed{
			ID:          b.ID,
			Name:        b.Name,
			Status:      b.Status,
			CropName:    b.CropName,
			DaysElapsed: daysElapsed(b.PlantedAt, now),
			Sensors: dashboard.Sensors{
				Temperature: dashboard.SensorStatus{Value: latest.Temperature, Status: TemperatureStatus(latest.Temperature)},
				Humidity:    dashboard.SensorStatus{Value: latest.Humidity, Status: HumidityStatus(latest.Humidity)},
			},
		})
	}
	for _, t := range todos {
		dash.Todos = append(dash.Todos, todo.Todo{ID: t.ID, Content: t.Content, IsCompleted: t.IsCompleted})
	}
	for _, b := range badges {
		dash.Badges = append(dash.Badges, dashboard.Badge{
			ID:       b.ID,
			Name:     b.Name,
			ImageURL: b.ImageURL,
			Acquired: class.Points >= b.Threshold,
		})
	}
	return dash, nil
}

func (svc *Service) latestReading(bedID int, now time.Time) (Reading, error) {
	readings, err := svc.repo.Readings(bedID, now.Add(-sensorHistoryPeriod))
	if err != nil {
		return Reading{}, errors.Wrap(err, "querying readings")
	}
	var latest Reading
	for _, r := range readings {
		if !r.RecordedAt.After(now) && r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return latest, nil
}

func daysElapsed(planted *time.Time, now time.Time) *int {
	if planted == nil {
		return nil
	}
	days := int(now.Sub(*planted).Hours() / 24)
	return &days
}

// Graph returns the readings of the first bed of the class over rng.
func (svc *Service) Graph(classID int, rng dashboard.Range, now time.Time) (dashboard.Graph, error) {
	if _, err := svc.repo.ClassByID(classID); err != nil {
		return dashboard.Graph{}, err
	}
	since := now.Add(-24 * time.Hour)
	if rng == dashboard.Range7d {
		since = now.Add(-7 * 24 * time.Hour)
	}

	graph := dashboard.Graph{Range: rng, Data: make([]dashboard.GraphPoint, 0)}
	beds, err := svc.repo.BedsByClass(classID)
	if err != nil {
		return graph, errors.Wrap(err, "querying beds")
	}
	if len(beds) == 0 {
		return graph, nil
	}
	readings, err := svc.repo.Readings(beds[0].ID, since)
	if err != nil {
		return graph, errors.Wrap(err, "querying readings")
	}
	for _, r := range readings {
		graph.Data = append(graph.Data, dashboard.GraphPoint{
			RecordedAt:  r.RecordedAt.UTC(),
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
		})
	}
	return graph, nil
}

func (svc *Service) UpdateTodo(classID, todoID int, completed bool) (todo.Todo, error) {
	t, err := svc.repo.SetTodoCompleted(classID, todoID, completed)
	if err != nil {
		return todo.Todo{}, err
	}
	return todo.Todo{ID: t.ID, Content: t.Content, IsCompleted: t.IsCompleted}, nil
}

func (svc *Service) day(now time.Time) string {
	return now.In(svc.location).Format("2006-01-02")
}

// todaysQuiz picks the first quiz the class has not answered today, in a daily rotation.
func (svc *Service) todaysQuiz(classID int, now time.Time) (*Quiz, []Answer, error) {
	quizzes, err := svc.repo.QueryQuizzes()
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying quizzes")
	}
	answers, err := svc.repo.AnswersOn(classID, svc.day(now))
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying answers")
	}
	if len(quizzes) == 0 {
		return nil, answers, nil
	}

	answered := make(map[int]bool, len(answers))
	for _, a := range answers {
		answered[a.QuizID] = true
	}
	offset := now.In(svc.location).YearDay() % len(quizzes)
	for i := range quizzes {
		q := quizzes[(offset+i)%len(quizzes)]
		if !answered[q.ID] {
			return &q, answers, nil
		}
	}
	return nil, answers, nil
}

func remainingChances(answers []Answer) int {
	used := 0
	for _, a := range answers {
		if a.PointsEarned > 0 {
			used++
		}
	}
	if used > DailyPointChances {
		return 0
	}
	return DailyPointChances - used
}

func (svc *Service) TodayQuiz(classID int, now time.Time) (learning.TodayQuiz, error) {
	if _, err := svc.repo.ClassByID(classID); err != nil {
		return learning.TodayQuiz{}, err
	}
	q, answers, err := svc.todaysQuiz(classID, now)
	if err != nil {
		return learning.TodayQuiz{}, err
	}
	if q == nil {
		return learning.TodayQuiz{HasQuiz: false, Message: "All of today's quizzes are done. See you tomorrow!"}, nil
	}

	remaining := remainingChances(answers)
	eligible := remaining > 0
	return learning.TodayQuiz{
		HasQuiz: true,
		Quiz: &learning.Quiz{
			ID:       q.ID,
			Category: q.Category,
			Question: q.Question,
			Options:  q.Options,
		},
		IsPointEligible:       &eligible,
		RemainingPointChances: &remaining,
	}, nil
}

// Answer grades the answer to today's quiz and awards points while daily chances remain.
func (svc *Service) Answer(classID int, req learning.AnswerRequest, now time.Time) (learning.AnswerResult, error) {
	if _, err := svc.repo.ClassByID(classID); err != nil {
		return learning.AnswerResult{}, err
	}
	q, answers, err := svc.todaysQuiz(classID, now)
	if err != nil {
		return learning.AnswerResult{}, err
	}
	if q == nil || q.ID != req.QuizID {
		return learning.AnswerResult{}, ErrUnknownQuiz
	}
	if req.SelectedIndex < 0 || req.SelectedIndex >= len(q.Options) {
		return learning.AnswerResult{}, core.NewValidationError(
			errors.New("selected option out of range"),
			core.FieldError{Field: "selected_index", Error: "selected option out of range"},
		)
	}

	correct := q.AnswerIndex != nil && *q.AnswerIndex == req.SelectedIndex
	points := 0
	if correct && remainingChances(answers) > 0 {
		points = PointsPerAnswer
	}

	saved, err := svc.repo.SaveAnswer(Answer{
		ClassID:      classID,
		QuizID:       q.ID,
		Day:          svc.day(now),
		IsCorrect:    correct,
		PointsEarned: points,
	}, DailyPointChances)
	if err != nil {
		if err == ErrAlreadyAnswered { // a concurrent submission won
			return learning.AnswerResult{}, ErrUnknownQuiz
		}
		return learning.AnswerResult{}, errors.Wrap(err, "saving answer")
	}
	points = saved.PointsEarned

	answers, err = svc.repo.AnswersOn(classID, saved.Day)
	if err != nil {
		return learning.AnswerResult{}, errors.Wrap(err, "querying answers")
	}
	remaining := remainingChances(answers)

	return learning.AnswerResult{
		IsCorrect:             correct,
		CorrectAnswerIndex:    q.AnswerIndex,
		Explanation:           q.Explanation,
		PointsEarned:          points,
		RemainingPointChances: remaining,
	}, nil
}

func (svc *Service) RevokeToken(id string, exp time.Time) error {
	return svc.repo.RevokeToken(id, exp)
}

func (svc *Service) IsTokenRevoked(id string) (bool, error) {
	return svc.repo.IsTokenRevoked(id)
}

// Admin CRUD

func toAdminClass(c Class) admin.Class {
	return admin.Class{ID: c.ID, Name: c.Name, Code: c.Code, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (svc *Service) Classes() ([]admin.Class, error) {
	classes, err := svc.repo.QueryClasses()
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	list := make([]admin.Class, 0, len(classes))
	for _, c := range classes {
		list = append(list, toAdminClass(c))
	}
	return list, nil
}

// newCode returns a random 6 character login code.
func newCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
}

func (svc *Service) CreateClass(form admin.ClassForm, now time.Time) (admin.Class, error) {
	for attempt := 0; attempt < 5; attempt++ {
		class, err := svc.repo.CreateClass(Class{
			Name:      form.Name,
			Code:      newCode(),
			GuestCode: newCode(),
			Locale:    defaultClassLocale,
			CreatedAt: now.UTC(),
		})
		if err == ErrCodeExists {
			continue
		}
		if err != nil {
			return admin.Class{}, errors.Wrap(err, "creating class")
		}
		return toAdminClass(class), nil
	}
	return admin.Class{}, errors.New("could not generate a unique class code")
}

func (svc *Service) UpdateClass(id int, form admin.ClassForm, now time.Time) (admin.Class, error) {
	class, err := svc.repo.ClassByID(id)
	if err != nil {
		return admin.Class{}, err
	}
	updated := now.UTC()
	class.Name = form.Name
	class.UpdatedAt = &updated
	class, err = svc.repo.UpdateClass(class)
	if err != nil {
		return admin.Class{}, errors.Wrap(err, "updating class")
	}
	return toAdminClass(class), nil
}

// DeleteClass removes the class and its beds.
func (svc *Service) DeleteClass(id int) error {
	return svc.repo.DeleteClass(id)
}

func (svc *Service) toAdminBed(b Bed) admin.HydroBed {
	bed := admin.HydroBed{
		ID:       b.ID,
		ClassID:  b.ClassID,
		Name:     b.Name,
		DeviceID: b.DeviceID,
		Location: b.Location,
		Status:   b.Status,
	}
	if class, err := svc.repo.ClassByID(b.ClassID); err == nil {
		bed.ClassName = class.Name
	}
	return bed
}

func (svc *Service) HydroBeds() ([]admin.HydroBed, error) {
	beds, err := svc.repo.QueryBeds()
	if err != nil {
		return nil, errors.Wrap(err, "querying beds")
	}
	list := make([]admin.HydroBed, 0, len(beds))
	for _, b := range beds {
		list = append(list, svc.toAdminBed(b))
	}
	return list, nil
}

func (svc *Service) checkClass(classID int) error {
	if _, err := svc.repo.ClassByID(classID); err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "class_id", Error: "unknown class"})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateHydroBed(form admin.HydroBedForm) (admin.HydroBed, error) {
	if err := svc.checkClass(form.ClassID); err != nil {
		return admin.HydroBed{}, err
	}
	bed, err := svc.repo.CreateBed(Bed{
		ClassID:  form.ClassID,
		Name:     form.Name,
		DeviceID: form.DeviceID,
		Location: form.Location,
		Status:   defaultBedStatus,
	})
	if err != nil {
		return admin.HydroBed{}, errors.Wrap(err, "creating bed")
	}
	return svc.toAdminBed(bed), nil
}

func (svc *Service) UpdateHydroBed(id int, form admin.HydroBedForm) (admin.HydroBed, error) {
	bed, err := svc.repo.BedByID(id)
	if err != nil {
		return admin.HydroBed{}, err
	}
	if err := svc.checkClass(form.ClassID); err != nil {
		return admin.HydroBed{}, err
	}
	bed.ClassID = form.ClassID
	bed.Name = form.Name
	bed.DeviceID = form.DeviceID
	bed.Location = form.Location
	if form.Status != "" {
		bed.Status = form.Status
	}
	bed, err = svc.repo.UpdateBed(bed)
	if err != nil {
		return admin.HydroBed{}, errors.Wrap(err, "updating bed")
	}
	return svc.toAdminBed(bed), nil
}

func (svc *Service) DeleteHydroBed(id int) error {
	return svc.repo.DeleteBed(id)
}
