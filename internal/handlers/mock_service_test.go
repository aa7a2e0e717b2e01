package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tumblelog/internal/models"
	"tumblelog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginID  int
	loginErr error

	lastUsername string
	lastPassword string
}

func (m *mockAuth) Login(_ context.Context, username, password string) (int, error) {
	m.lastUsername = username
	m.lastPassword = password
	return m.loginID, m.loginErr
}

type mockRegistrar struct {
	registerID  int
	registerErr error

	lastUsername string
	lastEmail    string
	lastPassword string
}

func (m *mockRegistrar) Register(_ context.Context, username, email, password string) (int, error) {
	m.lastUsername = username
	m.lastEmail = email
	m.lastPassword = password
	return m.registerID, m.registerErr
}

type attachCall struct {
	sessionID string
	userID    int
}

type mockSessionSvc struct {
	nextID      string
	resolveUser *models.User
	resolveErr  error
	attachErr   error
	detachErr   error

	attached      []attachCall
	detached      []string
	resolvedIDs   []string
	newIDRequests int
}

func (m *mockSessionSvc) NewID() string {
	m.newIDRequests++
	return m.nextID
}

func (m *mockSessionSvc) Attach(_ context.Context, sessionID string, userID int) error {
	m.attached = append(m.attached, attachCall{sessionID, userID})
	return m.attachErr
}

func (m *mockSessionSvc) Resolve(_ context.Context, sessionID string) (*models.User, error) {
	m.resolvedIDs = append(m.resolvedIDs, sessionID)
	return m.resolveUser, m.resolveErr
}

func (m *mockSessionSvc) Detach(_ context.Context, sessionID string) error {
	m.detached = append(m.detached, sessionID)
	return m.detachErr
}

func (m *mockSessionSvc) Run(context.Context, time.Duration) {}

type mockTokens struct {
	token    string
	issueErr error
	parseID  int
	parseErr error

	lastIssueID    int
	lastParseToken string
}

func (m *mockTokens) Issue(userID int) (string, error) {
	m.lastIssueID = userID
	return m.token, m.issueErr
}

func (m *mockTokens) Parse(accessToken string) (int, error) {
	m.lastParseToken = accessToken
	return m.parseID, m.parseErr
}

type deleteCall struct {
	id     string
	userID int
}

type mockPostsSvc struct {
	feed      []models.Post
	feedErr   error
	createRet *models.Post
	createErr error
	deleteErr error

	created    []service.NewPost
	lastDelete deleteCall
}

func (m *mockPostsSvc) Create(_ context.Context, np service.NewPost) (*models.Post, error) {
	m.created = append(m.created, np)
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.createRet != nil {
		return m.createRet, nil
	}
	return &models.Post{ID: "p1", UserID: np.UserID, Title: np.Title, Body: np.Body}, nil
}

func (m *mockPostsSvc) Feed(_ context.Context, _ service.FeedFilter) ([]models.Post, error) {
	return m.feed, m.feedErr
}

func (m *mockPostsSvc) ListByUser(_ context.Context, _ int) ([]models.Post, error) {
	return m.feed, m.feedErr
}

func (m *mockPostsSvc) Delete(_ context.Context, id string, userID int) error {
	m.lastDelete = deleteCall{id, userID}
	return m.deleteErr
}

// ---- Shared Test Helpers ----

// writeTestTemplates drops minimal templates into a temp dir so the HTML
// handlers can render during tests.
func writeTestTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"index.html":  `index user={{with .user}}{{.Username}}{{end}} posts={{len .posts}}`,
		"login.html":  `login error={{.error}}`,
		"signup.html": `signup error={{.error}} fields={{range $k, $v := .fields}}{{$k}}:{{$v}};{{end}}`,
		"upload.html": `upload error={{.error}} fields={{range $k, $v := .fields}}{{$k}}:{{$v}};{{end}}`,
		"error.html":  `error message={{.message}}`,
	}
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "*.html")
}

func newTestRouter(t *testing.T, s *service.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Config{
		TemplatesGlob: writeTestTemplates(t),
		UploadsDir:    t.TempDir(),
	})
	return h.InitRoutes()
}
