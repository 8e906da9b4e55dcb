package main

import (
	"html"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/golangcollege/sessions"

	"github.com/barrigacheea/marketplace/internal/produto"
	"github.com/barrigacheea/marketplace/internal/user"
)

// Capture the CSRF token value from the HTML page
var csrfTokenRX = regexp.MustCompile(`<input type='hidden' name='csrf_token' value='(.+)'>`)

func extractCSRFToken(t *testing.T, body []byte) string {
	// extract the token from the HTML body
	matches := csrfTokenRX.FindSubmatch(body)
	// expecting an array with at least two entries (matched pattern & captured data)
	if len(matches) < 2 {
		t.Log("Matched pattern:", string(matches[0]))
		t.Fatal("No csrf token found in body")
	}

	// unescape the rendered and html escaped base64 encoded string value
	return html.UnescapeString(string(matches[1]))
}

// newTestApplication creates an application struct with a discarding
// logger, in-memory stores and one registered donor account.
func newTestApplication(t *testing.T) *application {
	// Initialize template cache.
	templateCache, err := newTemplateCache("./../../ui/html/")
	if err != nil {
		t.Fatal(err)
	}

	// Session manager instance that mirrors production settings.
	// Sample generation of secret bytes 'openssl rand -base64 32'.
	secret := "zBtjT1J8wWrvUCuEZf+YbBa41nKYlCKiNLeS5AGdmiQ="
	session := sessions.New([]byte(secret))
	// sessions expire after 12 hours
	session.Lifetime = 12 * time.Hour
	// Set the secure flag on session cookies.
	session.Secure = true
	// Mitigate cross site request forgery (CSRF).
	session.SameSite = http.SameSiteStrictMode

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	discard := log.New(io.Discard, "", 0)

	users := user.NewService()
	if _, err := users.Register(user.NewUser{
		Name:       "Maria da Silva",
		Email:      "user@example.com",
		City:       "Recife",
		State:      "PE",
		PostalCode: "50000-000",
		Address:    "Rua das Flores, 123",
		Password:   "validPa$$word",
	}); err != nil {
		t.Fatal(err)
	}

	app := application{
		debug:         true,
		errorLog:      discard,
		infoLog:       discard,
		produtos:      produto.NewStore(),
		secret:        []byte(secret),
		session:       session,
		shutdown:      shutdown,
		templateCache: templateCache,
		useTLS:        true,
		users:         users,
	}

	return &app
}

// login walks through the login form flow for the seeded donor account.
func (ts *testServer) login(t *testing.T) {
	_, _, body := ts.get(t, "/user/login")
	csrfToken := extractCSRFToken(t, body)

	form := url.Values{}
	form.Add("email", "user@example.com")
	form.Add("password", "validPa$$word")
	form.Add("csrf_token", csrfToken)

	code, _, _ := ts.postForm(t, "/user/login", form)
	if code != http.StatusSeeOther {
		t.Fatalf("login: want %d; got %d", http.StatusSeeOther, code)
	}
}

type testServer struct {
	*httptest.Server
}

// newTestServer initalizes and returns a new instance of testServer
func newTestServer(t *testing.T, h http.Handler) *testServer {

	// spinup a https server for the duration of the test
	ts := httptest.NewUnstartedServer(h)
	ts.EnableHTTP2 = true
	ts.StartTLS()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	// add the cookie jar to the client, so that response cookies are stored
	// and then sent with subsequent requests
	ts.Client().Jar = jar

	// disabling the default behaviour for redirect-following for the client
	// returning the error forces it to immediately return the received response
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &testServer{ts}
}

// get performs a GET request to a given url path on the test server
func (ts *testServer) get(t *testing.T, urlPath string) (int, http.Header, []byte) {
	// make a GET request against the test server
	rs, err := ts.Client().Get(ts.URL + urlPath)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}

	return rs.StatusCode, rs.Header, body
}

// postForm method for sending POST requests to the test server
func (ts *testServer) postForm(t *testing.T, urlPath string, form url.Values) (int, http.Header, []byte) {
	// make a POST request against the test server
	rs, err := ts.Client().PostForm(ts.URL+urlPath, form)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		t.Fatal(err)
	}

	return rs.StatusCode, rs.Header, body
}
