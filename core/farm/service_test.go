package farm_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/farm"
	"github.com/trezcool/hydrofarm/core/learning"
	inmemdb "github.com/trezcool/hydrofarm/storage/database/inmem"
)

var now = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*farm.Service, farm.Repository) {
	db := inmemdb.Open()
	require.NoError(t, inmemdb.Seed(db, now, inmemdb.SeedOptions{}))
	repo := inmemdb.NewFarmRepository(db)
	return farm.NewService(repo, time.UTC), repo
}

func TestService_AuthenticateClass(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		code     string
		wantID   int
		wantRole string
		wantErr  error
	}{
		{code: "ABC123", wantID: 7, wantRole: farm.RoleStudent},
		{code: " guest7 ", wantID: 7, wantRole: farm.RoleGuest},
		{code: "XYZ789", wantID: 9, wantRole: farm.RoleStudent},
		{code: "NOPE00", wantErr: farm.ErrInvalidCode},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			class, role, err := svc.AuthenticateClass(tt.code)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantID, class.ID)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestService_AuthenticateAdmin(t *testing.T) {
	svc, _ := newService(t)

	adm, err := svc.AuthenticateAdmin(" Admin@Example.com", inmemdb.SeedAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, "Ms. Tanaka", adm.Name)

	_, err = svc.AuthenticateAdmin(inmemdb.SeedAdminEmail, "wrong-password")
	assert.Equal(t, farm.ErrInvalidCredentials, err)
	_, err = svc.AuthenticateAdmin("nobody@example.com", inmemdb.SeedAdminPassword)
	assert.Equal(t, farm.ErrInvalidCredentials, err)
}

func TestService_Dashboard(t *testing.T) {
	svc, _ := newService(t)

	dash, err := svc.Dashboard(7, now)
	require.NoError(t, err)
	assert.Equal(t, "Sunflower", dash.ClassName)
	require.Len(t, dash.Beds, 1)

	bed := dash.Beds[0]
	assert.Equal(t, "Lettuce", *bed.CropName)
	assert.Equal(t, 12, *bed.DaysElapsed)
	assert.Equal(t, dashboard.StatusGood, bed.Sensors.Temperature.Status)
	assert.Equal(t, dashboard.StatusGood, bed.Sensors.Humidity.Status)
	assert.InDelta(t, 25.8, *bed.Sensors.Temperature.Value, 0.01)

	assert.Len(t, dash.Todos, 3)
	assert.True(t, dash.Todos[2].IsCompleted)
	require.Len(t, dash.Badges, 3)
	assert.Equal(t, 0, dashboard.AcquiredCount(dash.Badges))

	dash, err = svc.Dashboard(9, now)
	require.NoError(t, err)
	require.Len(t, dash.Beds, 1)
	assert.Nil(t, dash.Beds[0].DaysElapsed)
	assert.Nil(t, dash.Beds[0].Sensors.Temperature.Value)
	assert.Equal(t, dashboard.StatusBad, dash.Beds[0].Sensors.Temperature.Status)

	_, err = svc.Dashboard(42, now)
	assert.Equal(t, farm.ErrNotFound, err)
}

func TestService_Graph(t *testing.T) {
	svc, _ := newService(t)

	g, err := svc.Graph(7, dashboard.Range24h, now)
	require.NoError(t, err)
	assert.Len(t, g.Data, 25)
	assert.Equal(t, now, g.Data[len(g.Data)-1].RecordedAt)

	g, err = svc.Graph(7, dashboard.Range7d, now)
	require.NoError(t, err)
	assert.Len(t, g.Data, 7*24+1)

	g, err = svc.Graph(9, dashboard.Range24h, now)
	require.NoError(t, err)
	assert.Empty(t, g.Data)
}

func TestService_UpdateTodo(t *testing.T) {
	svc, _ := newService(t)

	td, err := svc.UpdateTodo(7, 1, true)
	require.NoError(t, err)
	assert.True(t, td.IsCompleted)

	_, err = svc.UpdateTodo(9, 1, true)
	assert.Equal(t, farm.ErrNotFound, err, "todo of another class")
}

func answerIndex(t *testing.T, repo farm.Repository, quizID int) *int {
	quizzes, err := repo.QueryQuizzes()
	require.NoError(t, err)
	for _, q := range quizzes {
		if q.ID == quizID {
			return q.AnswerIndex
		}
	}
	t.Fatalf("quiz %d not found", quizID)
	return nil
}

func TestService_quiz(t *testing.T) {
	svc, repo := newService(t)

	seen := make(map[int]bool)
	points := 0
	for i := 0; i < 4; i++ {
		today, err := svc.TodayQuiz(7, now)
		require.NoError(t, err)
		require.True(t, today.HasQuiz)
		require.False(t, seen[today.Quiz.ID], "quiz %d served twice", today.Quiz.ID)
		seen[today.Quiz.ID] = true
		assert.True(t, *today.IsPointEligible)

		selected := 0
		if idx := answerIndex(t, repo, today.Quiz.ID); idx != nil {
			selected = *idx
		}
		res, err := svc.Answer(7, learning.AnswerRequest{QuizID: today.Quiz.ID, SelectedIndex: selected}, now)
		require.NoError(t, err)
		points += res.PointsEarned
	}
	assert.Equal(t, 3*farm.PointsPerAnswer, points)

	today, err := svc.TodayQuiz(7, now)
	require.NoError(t, err)
	assert.False(t, today.HasQuiz)
	assert.NotEmpty(t, today.Message)

	// badges follow the points
	dash, err := svc.Dashboard(7, now)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.AcquiredCount(dash.Badges))

	// a new day brings new quizzes
	today, err = svc.TodayQuiz(7, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, today.HasQuiz)
}

func TestService_Answer_limitReached(t *testing.T) {
	svc, repo := newService(t)
	day := now.Add(24 * time.Hour) // serves a graded quiz first
	for i := 0; i < farm.DailyPointChances; i++ {
		_, err := repo.SaveAnswer(farm.Answer{ClassID: 7, QuizID: 100 + i, Day: "2026-10-19", IsCorrect: true, PointsEarned: 10}, farm.DailyPointChances)
		require.NoError(t, err)
	}

	today, err := svc.TodayQuiz(7, day)
	require.NoError(t, err)
	assert.False(t, *today.IsPointEligible)
	assert.Equal(t, 0, *today.RemainingPointChances)

	idx := answerIndex(t, repo, today.Quiz.ID)
	require.NotNil(t, idx)
	res, err := svc.Answer(7, learning.AnswerRequest{QuizID: today.Quiz.ID, SelectedIndex: *idx}, day)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 0, res.PointsEarned)
	assert.Equal(t, learning.LimitReached, res.Outcome())
}

func TestService_Answer_concurrentSubmissions(t *testing.T) {
	svc, repo := newService(t)
	day := now.Add(24 * time.Hour) // serves a graded quiz first
	today, err := svc.TodayQuiz(7, day)
	require.NoError(t, err)
	idx := answerIndex(t, repo, today.Quiz.ID)
	require.NotNil(t, idx)

	const n = 8
	var wg sync.WaitGroup
	var graded, rejected int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(7, learning.AnswerRequest{QuizID: today.Quiz.ID, SelectedIndex: *idx}, day)
			switch err {
			case nil:
				atomic.AddInt32(&graded, 1)
			case farm.ErrUnknownQuiz:
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("Answer() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), graded, "the quiz is graded once")
	assert.Equal(t, int32(n-1), rejected)
	class, err := repo.ClassByID(7)
	require.NoError(t, err)
	assert.Equal(t, farm.PointsPerAnswer, class.Points, "points are awarded once")
}

func TestFarmRepository_SaveAnswer(t *testing.T) {
	_, repo := newService(t)
	answer := func(quizID int) farm.Answer {
		return farm.Answer{ClassID: 7, QuizID: quizID, Day: "2026-10-18", IsCorrect: true, PointsEarned: farm.PointsPerAnswer}
	}

	for i := 1; i <= 2; i++ {
		saved, err := repo.SaveAnswer(answer(i), 2)
		require.NoError(t, err)
		assert.Equal(t, farm.PointsPerAnswer, saved.PointsEarned)
	}
	saved, err := repo.SaveAnswer(answer(3), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.PointsEarned, "daily cap reached")

	_, err = repo.SaveAnswer(answer(1), 2)
	assert.Equal(t, farm.ErrAlreadyAnswered, err)

	_, err = repo.SaveAnswer(farm.Answer{ClassID: 404, QuizID: 1, Day: "2026-10-18"}, 2)
	assert.Equal(t, farm.ErrNotFound, err)

	class, err := repo.ClassByID(7)
	require.NoError(t, err)
	assert.Equal(t, 2*farm.PointsPerAnswer, class.Points)
}

func TestService_Answer_errors(t *testing.T) {
	svc, _ := newService(t)
	today, err := svc.TodayQuiz(7, now)
	require.NoError(t, err)

	_, err = svc.Answer(7, learning.AnswerRequest{QuizID: 999}, now)
	assert.Equal(t, farm.ErrUnknownQuiz, err)

	_, err = svc.Answer(7, learning.AnswerRequest{QuizID: today.Quiz.ID, SelectedIndex: 17}, now)
	assert.Equal(t, map[string]string{"selected_index": "selected option out of range"}, core.FieldErrors(err, nil))
}

func TestService_adminCRUD(t *testing.T) {
	svc, _ := newService(t)

	class, err := svc.CreateClass(admin.ClassForm{Name: "Rose"}, now)
	require.NoError(t, err)
	assert.Equal(t, 10, class.ID)
	assert.Len(t, class.Code, 6)
	assert.Nil(t, class.UpdatedAt)

	class, err = svc.UpdateClass(class.ID, admin.ClassForm{Name: "Rosa"}, now)
	require.NoError(t, err)
	assert.Equal(t, "Rosa", class.Name)
	assert.NotNil(t, class.UpdatedAt)

	_, err = svc.CreateHydroBed(admin.HydroBedForm{ClassID: 999, Name: "Bed X", DeviceID: "dev"})
	assert.Equal(t, map[string]string{"class_id": "unknown class"}, core.FieldErrors(err, nil))

	bed, err := svc.CreateHydroBed(admin.HydroBedForm{ClassID: class.ID, Name: "Bed C", DeviceID: "esp32-0003"})
	require.NoError(t, err)
	assert.Equal(t, "active", bed.Status)
	assert.Equal(t, "Rosa", bed.ClassName)

	bed, err = svc.UpdateHydroBed(bed.ID, admin.HydroBedForm{ClassID: 7, Name: "Bed C", DeviceID: "esp32-0003", Status: admin.BedInactive})
	require.NoError(t, err)
	assert.Equal(t, admin.BedInactive, bed.Status)
	assert.Equal(t, "Sunflower", bed.ClassName)

	require.NoError(t, svc.DeleteClass(7))
	beds, err := svc.HydroBeds()
	require.NoError(t, err)
	assert.Len(t, beds, 1, "beds of the deleted class are gone")
	assert.Equal(t, 2, beds[0].ID)

	assert.Equal(t, farm.ErrNotFound, svc.DeleteHydroBed(bed.ID))
	assert.Equal(t, farm.ErrNotFound, svc.DeleteClass(7))
}

func TestSensorStatus(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name     string
		temp     *float64
		humidity *float64
		want     [2]string
	}{
		{name: "missing", want: [2]string{dashboard.StatusBad, dashboard.StatusBad}},
		{name: "good", temp: f(22), humidity: f(55), want: [2]string{dashboard.StatusGood, dashboard.StatusGood}},
		{name: "edges", temp: f(18), humidity: f(70), want: [2]string{dashboard.StatusGood, dashboard.StatusGood}},
		{name: "warning", temp: f(30), humidity: f(35), want: [2]string{dashboard.StatusWarning, dashboard.StatusWarning}},
		{name: "bad", temp: f(35), humidity: f(90), want: [2]string{dashboard.StatusBad, dashboard.StatusBad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, [2]string{farm.TemperatureStatus(tt.temp), farm.HumidityStatus(tt.humidity)})
		})
	}
}
