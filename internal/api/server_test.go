package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
	"github.com/fran6w/pandas-method-chaining/internal/rules"
	"github.com/fran6w/pandas-method-chaining/internal/security"
	"github.com/fran6w/pandas-method-chaining/internal/storage"
)

type fakeDB struct {
	runs     map[string]ir.Run
	latest   string
	waivers  []storage.Waiver
	users    map[string]fakeUser // username -> user+hash
	sessions map[string]storage.User
	nextID   int64
}

type fakeUser struct {
	u    storage.User
	hash string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		runs:     map[string]ir.Run{},
		users:    map[string]fakeUser{},
		sessions: map[string]storage.User{},
	}
}

func (f *fakeDB) ListRuns(limit, offset int) ([]storage.RunRow, error) {
	var out []storage.RunRow
	for id, r := range f.runs {
		out = append(out, storage.RunRow{ID: id, StartedAt: r.StartedAt, Findings: len(r.Findings)})
	}
	return out, nil
}

func (f *fakeDB) LoadRun(id string) (ir.Run, error) {
	r, ok := f.runs[id]
	if !ok {
		return ir.Run{}, errors.New("not found")
	}
	return r, nil
}

func (f *fakeDB) ListFindings(runID, ruleID string) ([]ir.Finding, error) {
	r, ok := f.runs[runID]
	if !ok {
		return nil, errors.New("not found")
	}
	if ruleID == "" {
		return r.Findings, nil
	}
	var out []ir.Finding
	for _, fd := range r.Findings {
		if fd.RuleID == ruleID {
			out = append(out, fd)
		}
	}
	return out, nil
}

func (f *fakeDB) LatestRunID() (string, error) {
	if f.latest == "" {
		return "", errors.New("no runs")
	}
	return f.latest, nil
}

func (f *fakeDB) ListWaivers(activeOnly bool) ([]storage.Waiver, error) { return f.waivers, nil }

func (f *fakeDB) CreateWaiver(ruleID, file, pattern, reason, createdBy string, expires time.Time) (int64, error) {
	f.nextID++
	f.waivers = append(f.waivers, storage.Waiver{
		ID: f.nextID, RuleID: ruleID, File: file, PatternSub: pattern,
		Reason: reason, CreatedBy: createdBy, ExpiresAt: expires,
	})
	return f.nextID, nil
}

func (f *fakeDB) RevokeWaiver(id int64, by string) error { return nil }

func (f *fakeDB) GetUserByUsername(name string) (storage.User, string, error) {
	fu, ok := f.users[name]
	if !ok {
		return storage.User{}, "", errors.New("not found")
	}
	return fu.u, fu.hash, nil
}

func (f *fakeDB) CreateSession(uid int64, token string, exp time.Time) error {
	for _, fu := range f.users {
		if fu.u.ID == uid {
			f.sessions[token] = fu.u
			return nil
		}
	}
	return errors.New("no user")
}

func (f *fakeDB) GetSession(token string) (storage.User, error) {
	u, ok := f.sessions[token]
	if !ok {
		return storage.User{}, errors.New("no session")
	}
	return u, nil
}

func (f *fakeDB) DeleteSession(token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeDB) LogAudit(username, action, resource string, meta map[string]any) error { return nil }

func newTestServer(t *testing.T) (*Server, *fakeDB) {
	t.Helper()
	db := newFakeDB()
	srv := &Server{
		DB:              db,
		UserStore:       db,
		Rules:           rules.Default(),
		SessionDuration: time.Hour,
	}
	return srv, db
}

func addUser(t *testing.T, db *fakeDB, name, pw, role string) {
	t.Helper()
	hash, err := security.HashPassword(pw)
	if err != nil {
		t.Fatal(err)
	}
	db.users[name] = fakeUser{
		u:    storage.User{ID: int64(len(db.users) + 1), Username: name, Role: role},
		hash: hash,
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRulesInventory(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/rules", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
		Items []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 7 {
		t.Fatalf("count = %d, want 7", body.Count)
	}
	if body.Items[0].ID != "PMC001" {
		t.Fatalf("first rule = %s", body.Items[0].ID)
	}
}

func TestGetRunAndFindings(t *testing.T) {
	srv, db := newTestServer(t)
	db.runs["run-1"] = ir.Run{
		ID: "run-1",
		Findings: []ir.Finding{
			{ID: "f1", RuleID: "PMC001", File: "a.py", Line: 1},
			{ID: "f2", RuleID: "PMC004", File: "a.py", Line: 4},
		},
	}
	db.latest = "run-1"

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/runs/run-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get run: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/runs/latest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("latest: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/runs/run-1/findings?rule=PMC004", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("findings: %d", rec.Code)
	}
	var body struct {
		Items []ir.Finding `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != "f2" {
		t.Fatalf("items = %+v", body.Items)
	}

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/runs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing run: %d", rec.Code)
	}
}

func login(t *testing.T, srv *Server, name, pw string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": name, "password": pw})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginLogoutMe(t *testing.T) {
	srv, db := newTestServer(t)
	addUser(t, db, "alex", "s3cret", "viewer")

	// wrong password
	body, _ := json.Marshal(map[string]string{"username": "alex", "password": "nope"})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", rec.Code)
	}

	c := login(t, srv, "alex", "s3cret")

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d", rec.Code)
	}

	// unauthenticated /me
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without session: %d", rec.Code)
	}
}

func TestWaiverRequiresAdmin(t *testing.T) {
	srv, db := newTestServer(t)
	addUser(t, db, "viewer", "pw", "viewer")
	addUser(t, db, "boss", "pw", "admin")

	payload, _ := json.Marshal(waiverCreateReq{
		RuleID:    "PMC004",
		Reason:    "migration",
		ExpiresAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})

	// viewer is forbidden
	c := login(t, srv, "viewer", "pw")
	req := httptest.NewRequest("POST", "/api/v1/waivers", bytes.NewReader(payload))
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create waiver: %d", rec.Code)
	}

	// admin succeeds
	c = login(t, srv, "boss", "pw")
	req = httptest.NewRequest("POST", "/api/v1/waivers", bytes.NewReader(payload))
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create waiver: %d %s", rec.Code, rec.Body.String())
	}
	if len(db.waivers) != 1 || db.waivers[0].CreatedBy != "boss" {
		t.Fatalf("waivers = %+v", db.waivers)
	}
}

func TestWaiverValidation(t *testing.T) {
	srv, db := newTestServer(t)
	addUser(t, db, "boss", "pw", "admin")
	c := login(t, srv, "boss", "pw")

	payload, _ := json.Marshal(waiverCreateReq{RuleID: "PMC004"}) // missing reason/expiry
	req := httptest.NewRequest("POST", "/api/v1/waivers", bytes.NewReader(payload))
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete waiver: %d", rec.Code)
	}
}
