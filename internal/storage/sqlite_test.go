package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func sampleRun(id string, started time.Time) *ir.Run {
	return &ir.Run{
		ID:        id,
		StartedAt: started,
		Source:    "scripts",
		IRVersion: ir.Version,
		Files:     []ir.File{{Path: "a.py", Lines: 7}},
		Findings: []ir.Finding{
			{ID: id + "-f1", File: "a.py", RuleID: "PMC001", Message: "m1", Line: 1, Col: 0, Evidence: "df.dropna(inplace=True)"},
			{ID: id + "-f2", File: "a.py", RuleID: "PMC004", Message: "m4", Line: 4, Col: 0, Evidence: "df['c'] = 5"},
		},
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("run-1", time.Now().UTC())

	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadRun("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != run.ID || len(got.Findings) != 2 || len(got.Files) != 1 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Findings[0].Evidence != "df.dropna(inplace=True)" {
		t.Fatalf("evidence lost: %q", got.Findings[0].Evidence)
	}
}

func TestSaveRunUpsert(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("run-1", time.Now().UTC())
	if err := db.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	run.Findings = run.Findings[:1]
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	items, err := db.ListFindings("run-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("stale findings survived upsert: %d", len(items))
	}
}

func TestListRunsAndLatest(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := db.SaveRun(sampleRun("run-old", t0)); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRun(sampleRun("run-new", t0.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	rows, err := db.ListRuns(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].ID != "run-new" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Findings != 2 {
		t.Fatalf("findings count = %d", rows[0].Findings)
	}

	latest, err := db.LatestRunID()
	if err != nil || latest != "run-new" {
		t.Fatalf("latest = %q (%v)", latest, err)
	}

	ok, err := db.HasRun("run-old")
	if err != nil || !ok {
		t.Fatalf("HasRun(run-old) = %v (%v)", ok, err)
	}
	ok, err = db.HasRun("missing")
	if err != nil || ok {
		t.Fatalf("HasRun(missing) = %v (%v)", ok, err)
	}
}

func TestListFindingsOrderAndFilter(t *testing.T) {
	db := openTestDB(t)
	run := &ir.Run{
		ID:        "run-1",
		StartedAt: time.Now().UTC(),
		Findings: []ir.Finding{
			{ID: "f3", File: "b.py", RuleID: "PMC002", Line: 1, Col: 0},
			{ID: "f1", File: "a.py", RuleID: "PMC004", Line: 5, Col: 0},
			{ID: "f2", File: "a.py", RuleID: "PMC001", Line: 2, Col: 3},
		},
	}
	if err := db.SaveRun(run); err != nil {
		t.Fatal(err)
	}

	items, err := db.ListFindings("run-1", "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"f2", "f1", "f3"} // a.py:2, a.py:5, b.py:1
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("order: got %v", items)
		}
	}

	only, err := db.ListFindings("run-1", "PMC004")
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only[0].ID != "f1" {
		t.Fatalf("rule filter: %+v", only)
	}
}

func TestWaiversLifecycle(t *testing.T) {
	db := openTestDB(t)
	exp := time.Now().Add(24 * time.Hour)

	id, err := db.CreateWaiver("PMC004", "a.py", "new_col", "migration in flight", "alex", exp)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ws, err := db.ListWaivers(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 1 || ws[0].RuleID != "PMC004" || ws[0].File != "a.py" {
		t.Fatalf("active waivers = %+v", ws)
	}

	if err := db.RevokeWaiver(id, "alex"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ws, err = db.ListWaivers(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 0 {
		t.Fatalf("revoked waiver still active: %+v", ws)
	}
	all, err := db.ListWaivers(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].RevokedAt == nil {
		t.Fatalf("all waivers = %+v", all)
	}
}

func TestWaiversExpiry(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.CreateWaiver("PMC001", "", "", "expired", "alex", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	ws, err := db.ListWaivers(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 0 {
		t.Fatalf("expired waiver listed as active: %+v", ws)
	}
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)

	uid, err := db.CreateUser("alex", "hash", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u, hash, err := db.GetUserByUsername("alex")
	if err != nil || u.ID != uid || hash != "hash" || u.Role != "admin" {
		t.Fatalf("get user = %+v / %q (%v)", u, hash, err)
	}

	if err := db.CreateSession(uid, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	su, err := db.GetSession("tok")
	if err != nil || su.Username != "alex" {
		t.Fatalf("session user = %+v (%v)", su, err)
	}

	if err := db.DeleteSession("tok"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := db.GetSession("tok"); err == nil {
		t.Fatal("deleted session still resolves")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	db := openTestDB(t)
	uid, err := db.CreateUser("alex", "hash", "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateSession(uid, "tok", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetSession("tok"); err == nil {
		t.Fatal("expired session should not resolve")
	}
}
