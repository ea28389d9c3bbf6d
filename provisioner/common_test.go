package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/zitadel-provisioner/sdk/authx"
	"github.com/krancour/zitadel-provisioner/sdk/management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testExternalURL = "https://auth.example.com"
	testWebappURL   = "https://app.example.com"
	testAccessToken = "abc"
	testProjectID   = "170080223442206722"
	testActionID    = "170080223525896194"
	testClientID    = "170080223710445570@demo"
)

var (
	testRSAKey     *rsa.PrivateKey
	testRSAKeyOnce sync.Once
)

func getTestRSAKey(t *testing.T) *rsa.PrivateKey {
	testRSAKeyOnce.Do(func() {
		var err error
		testRSAKey, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	})
	require.NotNil(t, testRSAKey)
	return testRSAKey
}

// writeTestKeyFile writes a service account key file to dir and returns its
// path. Fields named in omit are left out of the document.
func writeTestKeyFile(t *testing.T, dir string, omit ...string) string {
	doc := map[string]string{
		"type":   "serviceaccount",
		"keyId":  "170079991923474690",
		"userId": "170079991923474689",
		"key": string(
			pem.EncodeToMemory(
				&pem.Block{
					Type:  "RSA PRIVATE KEY",
					Bytes: x509.MarshalPKCS1PrivateKey(getTestRSAKey(t)),
				},
			),
		),
	}
	for _, field := range omit {
		delete(doc, field)
	}
	docBytes, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, "key.json")
	require.NoError(t, ioutil.WriteFile(path, docBytes, 0600))
	return path
}

func newTestDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "provisioner")
	require.NoError(t, err)
	return dir, func() { os.RemoveAll(dir) }
}

// fakeZitadel is an in-memory stand-in for the token endpoint and the
// management API. Each field controls how one endpoint responds.
type fakeZitadel struct {
	t      *testing.T
	server *httptest.Server
	// host is the Host header every request must carry.
	host string

	tokenStatus   int
	tokenBody     string
	projectStatus int
	searchBody    string
	roleStatus    int
	actionBody    string
	bindStatus    int
	appStatus     int
	appBody       string
	discovery     bool

	mu        sync.Mutex
	requests  []string
	project   management.Project
	search    management.ProjectsSearch
	role      management.ProjectRole
	action    management.Action
	actionIDs []string
	app       management.OIDCApplication
}

func newFakeZitadel(t *testing.T) *fakeZitadel {
	f := &fakeZitadel{
		t:           t,
		host:        "auth.example.com",
		tokenStatus: http.StatusOK,
		tokenBody: fmt.Sprintf(
			`{"access_token":%q,"token_type":"Bearer","expires_in":3600}`,
			testAccessToken,
		),
		projectStatus: http.StatusOK,
		searchBody: fmt.Sprintf(
			`{"details":{"totalResult":"1"},"result":[{"id":%q,"name":"Demo"}]}`,
			testProjectID,
		),
		roleStatus: http.StatusOK,
		actionBody: fmt.Sprintf(`{"id":%q}`, testActionID),
		bindStatus: http.StatusOK,
		appStatus:  http.StatusOK,
		appBody: fmt.Sprintf(
			`{"appId":"170080223710380034","clientId":%q,"clientSecret":"shh"}`,
			testClientID,
		),
	}

	router := mux.NewRouter()
	router.HandleFunc("/oauth/v2/token", f.token).Methods(http.MethodPost)
	router.HandleFunc("/management/v1/projects", f.createProject).
		Methods(http.MethodPost)
	router.HandleFunc(
		"/management/v1/projects/_search",
		f.searchProjects,
	).Methods(http.MethodPost)
	router.HandleFunc(
		"/management/v1/projects/{projectID}/roles",
		f.addRole,
	).Methods(http.MethodPost)
	router.HandleFunc("/management/v1/actions", f.createAction).
		Methods(http.MethodPost)
	router.HandleFunc(
		"/management/v1/flows/{flowType}/trigger/{triggerType}",
		f.bindTrigger,
	).Methods(http.MethodPost)
	router.HandleFunc(
		"/management/v1/projects/{projectID}/apps/oidc",
		f.createApp,
	).Methods(http.MethodPost)
	router.HandleFunc(
		"/.well-known/openid-configuration",
		f.openIDConfiguration,
	).Methods(http.MethodGet)
	f.server = httptest.NewServer(router)
	return f
}

func (f *fakeZitadel) Close() {
	f.server.Close()
}

func (f *fakeZitadel) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := make([]string, len(f.requests))
	copy(requests, f.requests)
	return requests
}

func (f *fakeZitadel) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
}

func (f *fakeZitadel) respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintln(w, body)
}

// authenticated records the request and checks the headers every management
// API call must carry, decoding the body into bodyObj.
func (f *fakeZitadel) authenticated(r *http.Request, bodyObj interface{}) {
	f.record(r)
	assert.Equal(f.t, f.host, r.Host)
	assert.Equal(f.t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
	assert.Equal(f.t, "application/json", r.Header.Get("Content-Type"))
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.NoError(f.t, json.NewDecoder(r.Body).Decode(bodyObj))
}

func (f *fakeZitadel) token(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	assert.Equal(f.t, f.host, r.Host)
	assert.NoError(f.t, r.ParseForm())
	assert.Equal(f.t, authx.GrantTypeJWTBearer, r.PostForm.Get("grant_type"))
	assert.NotEmpty(f.t, r.PostForm.Get("assertion"))
	f.respond(w, f.tokenStatus, f.tokenBody)
}

func (f *fakeZitadel) createProject(w http.ResponseWriter, r *http.Request) {
	f.authenticated(r, &f.project)
	f.respond(w, f.projectStatus, "{}")
}

func (f *fakeZitadel) searchProjects(w http.ResponseWriter, r *http.Request) {
	f.authenticated(r, &f.search)
	f.respond(w, http.StatusOK, f.searchBody)
}

func (f *fakeZitadel) addRole(w http.ResponseWriter, r *http.Request) {
	f.authenticated(r, &f.role)
	assert.Equal(f.t, testProjectID, mux.Vars(r)["projectID"])
	f.respond(w, f.roleStatus, "{}")
}

func (f *fakeZitadel) createAction(w http.ResponseWriter, r *http.Request) {
	f.authenticated(r, &f.action)
	f.respond(w, http.StatusOK, f.actionBody)
}

func (f *fakeZitadel) bindTrigger(w http.ResponseWriter, r *http.Request) {
	body := struct {
		ActionIDs []string `json:"actionIds"`
	}{}
	f.authenticated(r, &body)
	f.mu.Lock()
	f.actionIDs = body.ActionIDs
	f.mu.Unlock()
	f.respond(w, f.bindStatus, "{}")
}

func (f *fakeZitadel) createApp(w http.ResponseWriter, r *http.Request) {
	f.authenticated(r, &f.app)
	assert.Equal(f.t, testProjectID, mux.Vars(r)["projectID"])
	f.respond(w, f.appStatus, f.appBody)
}

func (f *fakeZitadel) openIDConfiguration(
	w http.ResponseWriter,
	r *http.Request,
) {
	f.record(r)
	if !f.discovery {
		f.respond(w, http.StatusNotFound, `{"error":"not found"}`)
		return
	}
	f.respond(
		w,
		http.StatusOK,
		fmt.Sprintf(
			`{"issuer":%q,"authorization_endpoint":"%s/oauth/v2/authorize",`+
				`"token_endpoint":"%s/oauth/v2/token",`+
				`"jwks_uri":"%s/oauth/v2/keys"}`,
			f.server.URL,
			f.server.URL,
			f.server.URL,
			f.server.URL,
		),
	)
}

func newTestConfig(internalURL, keyPath string) Config {
	config := NewConfigWithDefaults()
	config.ExternalURL = testExternalURL
	config.InternalURL = internalURL
	config.ServiceAccountKeyPath = keyPath
	config.ProjectName = "Demo"
	config.RoleKey = "app-user"
	config.WebappURLs = []string{testWebappURL}
	config.RequestTimeout = 5 * time.Second
	return config
}
