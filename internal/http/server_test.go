package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"testing"
	"time"

	"clientkit/internal/auth"
	"clientkit/internal/config"
	"clientkit/internal/domain/submission"
	"clientkit/internal/onboarding"
	"clientkit/internal/payment"
	"clientkit/internal/repository/snapshot"
	store "clientkit/internal/snapshot"
	"clientkit/internal/storage"
	"clientkit/internal/upload"
	"clientkit/pkg/markdown"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "k3J9x!qTz7LmW2vR8pYc4NbH6sDf1GaE"

type testServer struct {
	handler  stdhttp.Handler
	sessions *onboarding.Manager
	blobs    *storage.MemoryBlobStore
}

func newTestServer(t *testing.T, s store.Store) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		App: config.AppConfig{
			MaxUploadSize: 1024,
			PublicBaseURL: "http://clientkit.test",
		},
	}
	logger := zap.NewNop()
	db := snapshot.New(s)
	users := snapshot.NewUserRepository(db)
	projects := snapshot.NewProjectRepository(db, cfg.App.PublicBaseURL)
	chats := snapshot.NewChatRepository(db)
	blobs := storage.NewMemoryBlobStore()

	sessions := onboarding.NewManager(onboarding.ManagerConfig{
		Projects:  projects,
		Recorder:  onboarding.NewRecorder(projects, chats),
		Processor: payment.NewSimulated(0),
		TTL:       time.Hour,
		Logger:    logger,
	})
	t.Cleanup(sessions.CloseAll)

	jwtService := auth.NewJWTService(testSecret, time.Hour)
	srv := NewServer(&ServerDependencies{
		Config:         cfg,
		Logger:         logger,
		UserRepo:       users,
		ProjectRepo:    projects,
		ChatRepo:       chats,
		Sessions:       sessions,
		Uploads:        upload.NewService(blobs, cfg.App.MaxUploadSize, logger),
		Markdown:       markdown.New(),
		JWTService:     jwtService,
		AuthMiddleware: auth.NewMiddleware(jwtService, users),
	})
	return &testServer{handler: srv.Handler(), sessions: sessions, blobs: blobs}
}

func (ts *testServer) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func login(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.do(t, stdhttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    "Demo@ClientKit.com",
		"password": "anything",
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]interface{}](t, rec)["token"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	rec := ts.do(t, stdhttp.MethodGet, "/health", "", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPI_RequiresToken(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	rec := ts.do(t, stdhttp.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestAuth_LoginMeLogout(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	token := login(t, ts)

	rec := ts.do(t, stdhttp.MethodGet, "/api/me", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	me := decode[map[string]interface{}](t, rec)
	u := me["user"].(map[string]interface{})
	assert.Equal(t, "demo@clientkit.com", u["email"])
	assert.Equal(t, "demo", u["name"])
	assert.Equal(t, 0.0, me["total_unread"])

	rec = ts.do(t, stdhttp.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = ts.do(t, stdhttp.MethodGet, "/api/me", token, nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
}

func TestAuth_RejectsBadEmail(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	rec := ts.do(t, stdhttp.MethodPost, "/auth/signup", "", map[string]string{"email": "nope"})
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestOnboardingFlow(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	token := login(t, ts)

	rec := ts.do(t, stdhttp.MethodPost, "/api/projects", token, map[string]interface{}{
		"name":        "Website Redesign",
		"description": "Complete **redesign**",
		"brief_questions": []map[string]interface{}{
			{"question": "What is your company name?", "required": true},
		},
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]interface{}](t, rec)
	projectID := created["id"].(string)
	publicID := path.Base(created["public_link"].(string))
	questionID := created["brief_questions"].([]interface{})[0].(map[string]interface{})["id"].(string)

	rec = ts.do(t, stdhttp.MethodGet, "/onboard/"+publicID, "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	public := decode[map[string]interface{}](t, rec)
	assert.Contains(t, public["description_html"], "<strong>redesign</strong>")
	assert.Equal(t, []interface{}{"brief", "files"}, public["steps"])

	rec = ts.do(t, stdhttp.MethodPost, "/onboard/"+publicID+"/sessions", "", map[string]string{
		"name":  "Sarah Johnson",
		"email": "sarah@techcorp.com",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	sessionID := decode[onboarding.View](t, rec).SessionID
	base := "/onboard/sessions/" + sessionID

	rec = ts.do(t, stdhttp.MethodPost, base+"/next", "", nil)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)

	rec = ts.do(t, stdhttp.MethodPut, base+"/answers/"+questionID, "", map[string]string{"answer": "TechCorp"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[onboarding.View](t, rec).CanAdvance)

	rec = ts.do(t, stdhttp.MethodPost, base+"/next", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, onboarding.StepFiles, decode[onboarding.View](t, rec).Step)

	rec = uploadFile(t, ts, base, "brief.txt", "hello")
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, ts.blobs.Len())

	rec = ts.do(t, stdhttp.MethodPost, base+"/next", "", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	view := decode[onboarding.View](t, rec)
	assert.True(t, view.Complete)

	rec = ts.do(t, stdhttp.MethodPost, base+"/testimonial", "", map[string]interface{}{"rating": 5, "text": "Smooth"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, stdhttp.MethodGet, "/api/projects/"+projectID+"/submissions", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	subs := decode[[]map[string]interface{}](t, rec)
	require.Len(t, subs, 1)
	assert.Equal(t, "completed", subs[0]["status"])
	assert.Len(t, subs[0]["uploaded_files"], 1)
	assert.NotNil(t, subs[0]["testimonial"])

	rec = ts.do(t, stdhttp.MethodGet, "/api/chat/unread", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1}`, rec.Body.String())

	rec = ts.do(t, stdhttp.MethodGet, "/api/chat/rooms", token, nil)
	rooms := decode[[]map[string]interface{}](t, rec)
	require.Len(t, rooms, 1)
	roomID := rooms[0]["id"].(string)

	rec = ts.do(t, stdhttp.MethodPost, "/api/chat/rooms/"+roomID+"/messages", token, map[string]string{"content": "Thanks Sarah!"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, stdhttp.MethodPost, "/api/chat/rooms/"+roomID+"/read", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = ts.do(t, stdhttp.MethodGet, "/api/chat/rooms/"+roomID+"/messages", token, nil)
	msgs := decode[[]map[string]interface{}](t, rec)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, true, m["read"])
	}

	rec = ts.do(t, stdhttp.MethodDelete, base, "", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	rec = ts.do(t, stdhttp.MethodGet, base, "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func uploadFile(t *testing.T, ts *testServer, base, name, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(stdhttp.MethodPost, base+"/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestProjects_OwnershipAndValidation(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	token := login(t, ts)

	rec := ts.do(t, stdhttp.MethodPost, "/api/projects", token, map[string]interface{}{"name": "No description"})
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	rec = ts.do(t, stdhttp.MethodPost, "/api/projects", token, map[string]interface{}{
		"name": "Logo", "description": "Brand refresh",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	id := decode[map[string]interface{}](t, rec)["id"].(string)

	rec = ts.do(t, stdhttp.MethodPatch, "/api/projects/"+id, token, map[string]interface{}{"status": "draft"})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "draft", decode[map[string]interface{}](t, rec)["status"])

	other := ts.do(t, stdhttp.MethodPost, "/auth/login", "", map[string]string{"email": "other@clientkit.com"})
	otherToken := decode[map[string]interface{}](t, other)["token"].(string)
	rec = ts.do(t, stdhttp.MethodGet, "/api/projects/"+id, otherToken, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	rec = ts.do(t, stdhttp.MethodDelete, "/api/projects/"+id, token, nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	rec = ts.do(t, stdhttp.MethodGet, "/api/projects/"+id, token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestProjects_UpdateKeepsCreationGates(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	token := login(t, ts)

	rec := ts.do(t, stdhttp.MethodPost, "/api/projects", token, map[string]interface{}{
		"name": "Logo", "description": "Brand refresh",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	target := "/api/projects/" + decode[map[string]interface{}](t, rec)["id"].(string)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"blank name and description", map[string]interface{}{"name": "   ", "description": "  "}},
		{"blank name", map[string]interface{}{"name": " "}},
		{"blank description", map[string]interface{}{"description": "\t"}},
		{"no questions", map[string]interface{}{"brief_questions": []interface{}{}}},
		{"blank question", map[string]interface{}{"brief_questions": []map[string]interface{}{{"question": "  "}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, stdhttp.MethodPatch, target, token, tt.body)
			assert.Equal(t, stdhttp.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec = ts.do(t, stdhttp.MethodGet, target, token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	got := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "Logo", got["name"])
	assert.Equal(t, "Brand refresh", got["description"])
	assert.NotEmpty(t, got["brief_questions"])

	rec = ts.do(t, stdhttp.MethodPatch, target, token, map[string]interface{}{"name": "  Logo v2 "})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logo v2", decode[map[string]interface{}](t, rec)["name"])
}

func TestProjects_DownloadSubmittedFile(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	token := login(t, ts)

	rec := ts.do(t, stdhttp.MethodPost, "/api/projects", token, map[string]interface{}{
		"name":            "Logo",
		"description":     "Brand refresh",
		"brief_questions": []map[string]interface{}{{"question": "Company?"}},
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	created := decode[map[string]interface{}](t, rec)
	projectID := created["id"].(string)

	rec = ts.do(t, stdhttp.MethodPost, "/onboard/"+path.Base(created["public_link"].(string))+"/sessions", "", map[string]string{
		"name": "Sarah Johnson", "email": "sarah@techcorp.com",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	base := "/onboard/sessions/" + decode[onboarding.View](t, rec).SessionID

	require.Equal(t, stdhttp.StatusOK, ts.do(t, stdhttp.MethodPost, base+"/next", "", nil).Code)
	require.Equal(t, stdhttp.StatusCreated, uploadFile(t, ts, base, "brief.txt", "hello").Code)
	require.Equal(t, stdhttp.StatusOK, ts.do(t, stdhttp.MethodPost, base+"/next", "", nil).Code)

	rec = ts.do(t, stdhttp.MethodGet, "/api/projects/"+projectID+"/submissions", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	subs := decode[[]submission.Submission](t, rec)
	require.Len(t, subs, 1)
	require.Len(t, subs[0].UploadedFiles, 1)
	f := subs[0].UploadedFiles[0]
	files := "/api/projects/" + projectID + "/submissions/" + subs[0].ID + "/files/"

	rec = ts.do(t, stdhttp.MethodGet, files+f.ID, token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"url":"memory:///`+f.Key+`"}`, rec.Body.String())

	rec = ts.do(t, stdhttp.MethodGet, files+"missing", token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	other := ts.do(t, stdhttp.MethodPost, "/auth/login", "", map[string]string{"email": "other@clientkit.com"})
	otherToken := decode[map[string]interface{}](t, other)["token"].(string)
	rec = ts.do(t, stdhttp.MethodGet, files+f.ID, otherToken, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	require.NoError(t, ts.blobs.Delete(context.Background(), f.Key))
	rec = ts.do(t, stdhttp.MethodGet, files+f.ID, token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestOnboarding_UnknownLink(t *testing.T) {
	ts := newTestServer(t, store.NewMemoryStore())
	rec := ts.do(t, stdhttp.MethodGet, "/onboard/missing", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

type downStore struct{}

var errDown = errors.New("connection refused")

func (downStore) Load(context.Context, string) ([]byte, error) { return nil, errDown }
func (downStore) Save(context.Context, string, []byte) error   { return errDown }
func (downStore) Delete(context.Context, string) error         { return errDown }
func (downStore) Close() error                                 { return nil }

func TestStorageFailureIsServiceUnavailable(t *testing.T) {
	ts := newTestServer(t, downStore{})
	rec := ts.do(t, stdhttp.MethodPost, "/auth/login", "", map[string]string{"email": "demo@clientkit.com"})
	assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage unavailable")
}
