package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/auth"
	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/farm"
	"github.com/trezcool/hydrofarm/core/learning"
	inmemdb "github.com/trezcool/hydrofarm/storage/database/inmem"
)

func Test_authApi_login(t *testing.T) {
	app, _ := setup(t)

	tests := []struct {
		httpTest
		wantRole string
	}{
		{
			httpTest: httpTest{
				name: "code required", method: http.MethodPost, path: "/api/v1/login", body: []byte(`{"code":""}`),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, httpErr{Error: map[string]string{"code": "this field is required"}}),
			},
		},
		{
			httpTest: httpTest{
				name: "bad characters", method: http.MethodPost, path: "/api/v1/login", body: []byte(`{"code":"AB C!"}`),
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, httpErr{Error: map[string]string{"code": "only letters, digits and hyphens are allowed"}}),
			},
		},
		{
			httpTest: httpTest{
				name: "unknown code", method: http.MethodPost, path: "/api/v1/login", body: []byte(`{"code":"NOPE00"}`),
				wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid class code"}),
			},
		},
		{
			httpTest: httpTest{
				name: "student", method: http.MethodPost, path: "/api/v1/login", body: []byte(`{"code":"ABC123"}`),
				wantCode: http.StatusOK,
			},
			wantRole: farm.RoleStudent,
		},
		{
			httpTest: httpTest{
				name: "guest", method: http.MethodPost, path: "/api/v1/login", body: []byte(`{"code":"  GUEST7 "}`),
				wantCode: http.StatusOK,
			},
			wantRole: farm.RoleGuest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.run(t, app)
			checkCodeAndData(t, tt.httpTest, rec)
			if tt.wantRole == "" {
				return
			}

			var resp auth.ClassLogin
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, tt.wantRole, resp.Role)
			assert.Equal(t, auth.ClassInfo{ID: 7, Name: "Sunflower", Locale: "ja"}, resp.Class)
		})
	}
}

func Test_authApi_adminLogin(t *testing.T) {
	app, _ := setup(t)
	body := func(email, pwd string) []byte {
		return marchallObj(t, auth.AdminLoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "invalid email", method: http.MethodPost, path: "/api/v1/admin/login", body: body("admin", "whatever-pwd"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"email": "email must be a valid email address"}}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/v1/admin/login", body: body(inmemdb.SeedAdminEmail, "wrong-password"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid email or password"}),
		},
		{
			name: "ok", method: http.MethodPost, path: "/api/v1/admin/login", body: body("ADMIN@example.com", inmemdb.SeedAdminPassword),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.run(t, app)
			checkCodeAndData(t, tt, rec)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp auth.AdminLogin
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, auth.AdminInfo{ID: 1, Name: "Ms. Tanaka", SchoolName: "Midori Elementary"}, resp.Admin)
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/v1/login", []byte(`{"code":"ABC123"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.ClassLogin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	tests := []httpTest{
		{name: "token works", path: "/api/v1/classes/7/dashboard", token: login.Token, wantCode: http.StatusOK},
		{name: "auth required", method: http.MethodPost, path: "/api/v1/logout", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "logout", method: http.MethodPost, path: "/api/v1/logout", token: login.Token, wantCode: http.StatusNoContent},
		{
			name: "token revoked", path: "/api/v1/classes/7/dashboard", token: login.Token,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "token has been revoked"}),
		},
		{name: "other tokens still work", path: "/api/v1/classes/7/dashboard", token: classToken(t, 7, farm.RoleStudent), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, app))
		})
	}
}

func Test_classApi_scope(t *testing.T) {
	app, _ := setup(t)

	tests := []httpTest{
		{name: "auth required", path: "/api/v1/classes/7/dashboard", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad token", path: "/api/v1/classes/7/dashboard", token: "not-a-jwt",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{name: "other class", path: "/api/v1/classes/9/dashboard", token: classToken(t, 7, farm.RoleStudent), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "admin token", path: "/api/v1/classes/7/dashboard", token: adminToken(t), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "bad class id", path: "/api/v1/classes/abc/dashboard", token: classToken(t, 7, farm.RoleStudent), wantCode: http.StatusNotFound},
		{name: "student", path: "/api/v1/classes/7/dashboard", token: classToken(t, 7, farm.RoleStudent), wantCode: http.StatusOK},
		{name: "guest reads", path: "/api/v1/classes/7/graphs", token: classToken(t, 7, farm.RoleGuest), wantCode: http.StatusOK},
		{name: "trailing slash", path: "/api/v1/classes/7/learning/today/", token: classToken(t, 7, farm.RoleGuest), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, app))
		})
	}
}

func Test_classApi_dashboard(t *testing.T) {
	app, _ := setup(t)

	rec := httpTest{path: "/api/v1/classes/7/dashboard", token: classToken(t, 7, farm.RoleStudent)}.run(t, app)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash dashboard.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "Sunflower", dash.ClassName)
	require.Len(t, dash.Beds, 1)
	assert.Equal(t, 12, *dash.Beds[0].DaysElapsed)
	assert.Equal(t, dashboard.StatusGood, dash.Beds[0].Sensors.Temperature.Status)
	assert.Len(t, dash.Todos, 3)
	assert.Len(t, dash.Badges, 3)
}

func Test_classApi_graphs(t *testing.T) {
	app, _ := setup(t)
	token := classToken(t, 7, farm.RoleStudent)

	tests := []struct {
		path     string
		wantCode int
		wantLen  int
	}{
		{path: "/api/v1/classes/7/graphs", wantCode: http.StatusOK, wantLen: 25},
		{path: "/api/v1/classes/7/graphs?range=24h", wantCode: http.StatusOK, wantLen: 25},
		{path: "/api/v1/classes/7/graphs?range=7d", wantCode: http.StatusOK, wantLen: 169},
		{path: "/api/v1/classes/7/graphs?range=1y", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httpTest{path: tt.path, token: token}.run(t, app)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				ok, err := jsonBytesEqual(rec.Body.Bytes(), marchallObj(t, httpErr{Error: map[string]string{"range": "range must be one of [24h 7d]"}}))
				require.NoError(t, err)
				assert.True(t, ok, rec.Body.String())
				return
			}
			var g dashboard.Graph
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
			assert.Len(t, g.Data, tt.wantLen)
		})
	}
}

func Test_classApi_updateTodo(t *testing.T) {
	app, _ := setup(t)
	student := classToken(t, 7, farm.RoleStudent)
	done := []byte(`{"is_completed":true}`)

	tests := []httpTest{
		{
			name: "guest is read-only", method: http.MethodPatch, path: "/api/v1/classes/7/todos/1", body: done,
			token: classToken(t, 7, farm.RoleGuest), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "guests cannot make changes"}),
		},
		{
			name: "student", method: http.MethodPatch, path: "/api/v1/classes/7/todos/1", body: done, token: student,
			wantCode: http.StatusOK, wantData: []byte(`{"id":1,"content":"Check the water level","is_completed":true}`),
		},
		{
			name: "unchecked", method: http.MethodPatch, path: "/api/v1/classes/7/todos/3", body: []byte(`{"is_completed":false}`), token: student,
			wantCode: http.StatusOK, wantData: []byte(`{"id":3,"content":"Clean the pump filter","is_completed":false}`),
		},
		{
			name: "todo of another class", method: http.MethodPatch, path: "/api/v1/classes/7/todos/4", body: done, token: student,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, app))
		})
	}
}

func Test_classApi_learning(t *testing.T) {
	app, _ := setup(t)
	token := classToken(t, 7, farm.RoleStudent)

	rec := httpTest{path: "/api/v1/classes/7/learning/today", token: token}.run(t, app)
	require.Equal(t, http.StatusOK, rec.Code)
	var today learning.TodayQuiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	require.True(t, today.HasQuiz)
	assert.Equal(t, 3, *today.RemainingPointChances)

	answer := func(quizID, idx int) httpTest {
		return httpTest{
			method: http.MethodPost, path: "/api/v1/classes/7/learning/quiz/answer", token: token,
			body: marchallObj(t, learning.AnswerRequest{QuizID: quizID, SelectedIndex: idx}),
		}
	}

	rec = answer(999, 0).run(t, app)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = answer(today.Quiz.ID, 0).run(t, app)
	require.Equal(t, http.StatusOK, rec.Code)
	var res learning.AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3-res.PointsEarned/farm.PointsPerAnswer, res.RemainingPointChances)

	// answered quizzes are not served again the same day
	rec = httpTest{path: "/api/v1/classes/7/learning/today", token: token}.run(t, app)
	var next learning.TodayQuiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	require.True(t, next.HasQuiz)
	assert.NotEqual(t, today.Quiz.ID, next.Quiz.ID)
}

func Test_adminApi(t *testing.T) {
	app, _ := setup(t)
	token := adminToken(t)

	tests := []httpTest{
		{name: "admin required", path: "/api/v1/admin/classes", token: classToken(t, 7, farm.RoleStudent), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "create class validation", method: http.MethodPost, path: "/api/v1/admin/classes", token: token,
			body: []byte(`{"name":""}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"name": "this field is required"}}),
		},
		{
			name: "update class (direct)", method: http.MethodPut, path: "/api/v1/admin/classes/9", token: token,
			body: []byte(`{"name":"Lily"}`), wantCode: http.StatusOK,
		},
		{
			name: "update class (body shim)", method: http.MethodPost, path: "/api/v1/admin/classes/9", token: token,
			body: []byte(`{"name":"Iris","_method":"PUT"}`), wantCode: http.StatusOK,
		},
		{
			name: "update unknown class", method: http.MethodPut, path: "/api/v1/admin/classes/99", token: token,
			body: []byte(`{"name":"Lily"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "bed validation", method: http.MethodPut, path: "/api/v1/admin/hydro_beds/1", token: token,
			body:     []byte(`{"class_id":7,"name":"Bed A","device_id":"esp32-0001","status":"broken"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: map[string]string{"status": "status must be one of: active, inactive"}}),
		},
		{
			name: "delete bed (header shim)", method: http.MethodPost, path: "/api/v1/admin/hydro_beds/2", token: token,
			header: map[string]string{"X-HTTP-Method-Override": "DELETE"}, wantCode: http.StatusNoContent,
		},
		{
			name: "delete bed again", method: http.MethodDelete, path: "/api/v1/admin/hydro_beds/2", token: token,
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, app))
		})
	}

	rec := httpTest{path: "/api/v1/admin/classes", token: token}.run(t, app)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []admin.Class
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
	require.Len(t, classes, 2)
	assert.Equal(t, "Iris", classes[1].Name)
	assert.NotNil(t, classes[1].UpdatedAt)

	rec = httpTest{
		method: http.MethodPost, path: "/api/v1/admin/hydro_beds", token: token,
		body: []byte(`{"class_id":9,"name":"Bed C","device_id":"esp32-0003","location":"Roof"}`),
	}.run(t, app)
	require.Equal(t, http.StatusCreated, rec.Code)
	var bed admin.HydroBed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bed))
	assert.Equal(t, admin.BedActive, bed.Status)
	assert.Equal(t, "Iris", bed.DisplayClassName())
}
