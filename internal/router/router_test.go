package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit"
	ratelimitrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/ratelimit/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/token"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/user/repo"
)

// captureSender records verification links instead of sending mail.
type captureSender struct {
	links []string
}

func (s *captureSender) SendVerification(_ context.Context, _, link string) error {
	s.links = append(s.links, link)
	return nil
}

type testApp struct {
	srv  *httptest.Server
	mail *captureSender
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop().Sugar()

	sender := &captureSender{}
	tokenSvc, err := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	userSvc := user.NewUserService(userrepo.NewMemoryRepo(), user.BcryptHasher{Cost: bcrypt.MinCost})
	sessionMgr := session.NewManager(sessionrepo.NewMemoryStore(), session.Config{TTL: time.Hour})
	limiter := ratelimit.NewLimiter(ratelimitrepo.NewMemoryStore(), ratelimit.Config{Cooldown: 5 * time.Second})
	taskSvc := task.NewService(taskrepo.NewMemoryRepo())

	handler := RegisterRoutes(
		logger,
		user.NewHandler(userSvc, tokenSvc, sender, sessionMgr, logger),
		task.NewHandler(taskSvc, logger),
		sessionMgr,
		limiter,
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, mail: sender}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		// the handlers answer with redirects; assert on them instead of following
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.Post(url, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func registerAndVerify(t *testing.T, app *testApp, c *http.Client, name, email, username, password string) {
	t.Helper()
	resp := postForm(t, c, app.srv.URL+"/register", url.Values{
		"name": {name}, "email": {email}, "username": {username}, "password": {password},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	require.NotEmpty(t, app.mail.links)
	link, err := url.Parse(app.mail.links[len(app.mail.links)-1])
	require.NoError(t, err)

	verifyResp, err := c.Get(app.srv.URL + link.Path)
	require.NoError(t, err)
	verifyResp.Body.Close()
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)
}

func login(t *testing.T, app *testApp, c *http.Client, loginID, password string) {
	t.Helper()
	resp := postForm(t, c, app.srv.URL+"/login", url.Values{
		"loginId": {loginID}, "password": {password},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestEndToEndFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	registerAndVerify(t, app, c, "Alice", "a@x.com", "alice", "pw12345")
	login(t, app, c, "alice", "pw12345")

	// fresh account: empty page, not an error
	resp, err := c.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, float64(204), body["status"])

	resp = postForm(t, c, app.srv.URL+"/create-item", url.Values{"todo": {"buy milk"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["data"].(map[string]any)
	require.Equal(t, "buy milk", created["todo"])
	require.Equal(t, "alice", created["username"])
	taskID := created["id"].(string)

	resp, err = c.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	require.Equal(t, float64(200), body["status"])
	require.Len(t, body["data"].([]any), 1)

	resp = postForm(t, c, app.srv.URL+"/delete-item", url.Values{"todoId": {taskID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = c.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	body = decodeBody(t, resp)
	require.Equal(t, float64(204), body["status"], "deleted task leaves an empty page")
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	registerAndVerify(t, app, c, "Alice", "a@x.com", "alice", "pw12345")

	resp := postForm(t, c, app.srv.URL+"/register", url.Values{
		"name": {"Other"}, "email": {"a@x.com"}, "username": {"other"}, "password": {"pw12345"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "email already exists", decodeBody(t, resp)["error"])

	resp = postForm(t, c, app.srv.URL+"/register", url.Values{
		"name": {"Other"}, "email": {"o@x.com"}, "username": {"alice"}, "password": {"pw12345"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "username already exists", decodeBody(t, resp)["error"])
}

func TestLogin_BlockedUntilVerified(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	resp := postForm(t, c, app.srv.URL+"/register", url.Values{
		"name": {"Alice"}, "email": {"a@x.com"}, "username": {"alice"}, "password": {"pw12345"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = postForm(t, c, app.srv.URL+"/login", url.Values{
		"loginId": {"alice"}, "password": {"pw12345"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "please verify your email first", decodeBody(t, resp)["error"])
}

func TestVerifyToken_Invalid(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	resp, err := c.Get(app.srv.URL + "/verifytoken/not-a-token")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCreateItem_Cooldown(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	registerAndVerify(t, app, c, "Alice", "a@x.com", "alice", "pw12345")
	login(t, app, c, "alice", "pw12345")

	resp := postForm(t, c, app.srv.URL+"/create-item", url.Values{"todo": {"buy milk"}})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// second create from the same session inside the window is rejected
	resp = postForm(t, c, app.srv.URL+"/create-item", url.Values{"todo": {"buy eggs"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	resp.Body.Close()

	// the cooldown does not gate reads
	resp, err := c.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOwnership_CrossUserForbidden(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	aliceClient := newClient(t)
	registerAndVerify(t, app, aliceClient, "Alice", "a@x.com", "alice", "pw12345")
	login(t, app, aliceClient, "alice", "pw12345")

	bobClient := newClient(t)
	registerAndVerify(t, app, bobClient, "Bob", "b@x.com", "bobby", "pw12345")
	login(t, app, bobClient, "bobby", "pw12345")

	resp := postForm(t, aliceClient, app.srv.URL+"/create-item", url.Values{"todo": {"buy milk"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := decodeBody(t, resp)["data"].(map[string]any)["id"].(string)

	resp = postForm(t, bobClient, app.srv.URL+"/edit-item", url.Values{
		"todoId": {taskID}, "newData": {"hijacked"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = postForm(t, bobClient, app.srv.URL+"/delete-item", url.Values{"todoId": {taskID}})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the task is unchanged for its owner
	resp, err := aliceClient.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "buy milk", data[0].(map[string]any)["todo"])
}

func TestLogout_DestroysSession(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	registerAndVerify(t, app, c, "Alice", "a@x.com", "alice", "pw12345")
	login(t, app, c, "alice", "pw12345")

	resp, err := c.Post(app.srv.URL+"/logout", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = c.Get(app.srv.URL + "/read-item")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGatedRoutes_RequireSession(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := newClient(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/logout"},
		{http.MethodPost, "/create-item"},
		{http.MethodGet, "/read-item"},
		{http.MethodPost, "/edit-item"},
		{http.MethodPost, "/delete-item"},
	} {
		req, err := http.NewRequest(route.method, app.srv.URL+route.path, nil)
		require.NoError(t, err)
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
	}
}
