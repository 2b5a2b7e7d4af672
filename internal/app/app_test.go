package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/model"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminPassword = "correct horse battery staple"
	jwtSecret     = "test-secret-test-secret-test-secret!"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	hash, err := service.HashPassword(adminPassword)
	require.NoError(t, err)

	publicDir := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(publicDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<h1>Quiz</h1>"), 0644))

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "3000", Mode: "test", PublicDir: publicDir, AssetsDir: filepath.Join(dir, "assets")},
		Store:  config.StoreConfig{ResultsFile: filepath.Join(dir, "results.csv"), AnswerColumns: 20},
		Quiz: config.QuizConfig{
			AllowedDomains: []string{"telecom-paris.fr", "imt.fr"},
			BankFile:       filepath.Join(dir, "quiz.yaml"),
			Logo:           "logo.png",
		},
		Admin:     config.AdminConfig{Username: "admin", PasswordHash: hash},
		JWT:       config.JWTConfig{Secret: jwtSecret, ExpireTime: time.Hour},
		Archive:   config.ArchiveConfig{Type: "none"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func doJSON(t *testing.T, a *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, a *App) string {
	t.Helper()
	w := doJSON(t, a, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func storedRows(t *testing.T, a *App) []string {
	t.Helper()
	data, err := os.ReadFile(a.Config.Store.ResultsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	return lines[1:]
}

func TestSubmitQuizExpert(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/api/submit-quiz", "",
		`{"email":"jean.dupont@telecom-paris.fr","department":"DSI","quizType":"cyber","score":9,"total":10,"answers":[1,1,1,1,1,1,1,1,1,0]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"level":"Expert"}`, w.Body.String())

	rows := storedRows(t, a)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], ",cyber,9,10,Expert,DSI,jea***ont@telecom-paris.fr,")
	assert.NotContains(t, rows[0], "jean.dupont")
}

func TestSubmitQuizRejectsForeignDomain(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/api/submit-quiz", "",
		`{"email":"someone@gmail.com","department":"DSI","quizType":"cyber","score":9,"total":10,"answers":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid submission"}`, w.Body.String())
	assert.Empty(t, storedRows(t, a))
}

func TestSubmitQuizRejectsMalformedJSON(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodPost, "/api/submit-quiz", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, storedRows(t, a))
}

func TestStatsTopQuestions(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	for _, email := range []string{"a@imt.fr", "b@imt.fr"} {
		w := doJSON(t, a, http.MethodPost, "/api/submit-quiz", "",
			`{"email":"`+email+`","department":"RH","quizType":"cyber","score":0,"total":10,"answers":[0]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, a, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats model.StatsPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalParticipants)
	assert.Equal(t, 2, stats.CyberStats.Participants)
	assert.Equal(t, 0.0, stats.CyberStats.AvgScore)
	assert.Equal(t, model.DeptStats{Count: 2, AvgScore: 0}, stats.CyberStats.ByDept["RH"])

	require.NotEmpty(t, stats.CyberStats.TopQuestions)
	top := stats.CyberStats.TopQuestions[0]
	assert.Equal(t, 0, top.Index)
	assert.Equal(t, 100.0, top.ErrorRate)
	assert.Equal(t, 2, top.Errors)
	assert.Equal(t, 2, top.Total)

	assert.Equal(t, 0, stats.RGPDStats.Participants)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/admin/stats", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportAndReset(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	w := doJSON(t, a, http.MethodPost, "/api/submit-quiz", "",
		`{"email":"a@imt.fr","department":"RH","quizType":"rgpd","score":2,"total":2,"answers":[1,1]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/admin/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "date,quiz_type,score,total,level,department,email_partial,q0,"))
	assert.Equal(t, 2, strings.Count(w.Body.String(), "\n"))

	w = doJSON(t, a, http.MethodGet, "/api/admin/export?quizType=cyber", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), "\n"))

	w = doJSON(t, a, http.MethodPost, "/api/admin/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"archive":""}`, w.Body.String())
	assert.Empty(t, storedRows(t, a))
}

func TestQuestionBankEndpoints(t *testing.T) {
	a := newTestApp(t)
	token := login(t, a)

	w := doJSON(t, a, http.MethodGet, "/api/questions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bank model.QuestionBank
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bank))
	assert.NotEmpty(t, bank.Cyber)
	assert.NotEmpty(t, bank.RGPD)

	w = doJSON(t, a, http.MethodPost, "/api/admin/questions/rgpd", token,
		model.Question{Question: "Qui contacter en cas de fuite ?", Options: []string{"Le DPO", "Personne"}, Correct: 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, "/api/questions", "", nil)
	var updated model.QuestionBank
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, bank.Version+1, updated.Version)
	assert.Len(t, updated.RGPD, len(bank.RGPD)+1)

	w = doJSON(t, a, http.MethodPost, "/api/admin/questions/phishing", token,
		model.Question{Question: "?", Options: []string{"a", "b"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, a, http.MethodDelete, "/api/admin/questions/cyber/99", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/admin/departments", token, map[string]string{"name": "Télécom Paris Ventures"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, "/api/departments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var departments []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &departments))
	assert.Contains(t, departments, "Télécom Paris Ventures")

	w = doJSON(t, a, http.MethodDelete, "/api/admin/departments/Inconnu", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthStaticAndNotFound(t *testing.T) {
	a := newTestApp(t)

	w := doJSON(t, a, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Quiz</h1>")

	w = doJSON(t, a, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/admin/logo", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, a, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
