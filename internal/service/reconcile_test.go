package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyora/internal/config"
	"fyora/internal/domain"
)

func newTestReconcile(t *testing.T) (*ReconcileService, *UserService, *config.Paths) {
	t.Helper()
	users := newTestService(t)
	paths, err := config.NewPaths(config.FilesConfig{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("NewPaths() error: %v", err)
	}
	paths.ExecDir = t.TempDir()

	r := NewReconcileService(users, paths)
	r.now = func() time.Time { return fixedNow }
	return r, users, paths
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, name := range []string{"fyora_export.json", "users.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r, users, paths := newTestReconcile(t)

			ana := mustAddUser(t, users, "Ana", "ana@x.com")
			_, err := users.AddProgressLog(ctx, ana.ID, domain.NewProgressLog(5, "Week 1"))
			assertNoError(t, err)
			mustAddUser(t, users, "Bea", "bea@x.com")

			path, err := r.ExportUsers(ctx, name)
			assertNoError(t, err)
			assertEqual(t, filepath.Join(paths.Root, "fyora_export", name), path)

			imported, from := r.ImportUsers(path)
			assertEqual(t, path, from)
			assertEqual(t, 2, len(imported))
			assertEqual(t, "Ana", imported[0].Nickname)
			assertEqual(t, 1, len(imported[0].ProgressLogs))
			assertEqual(t, "Week 1", imported[0].ProgressLogs[0].Achievement)
			if imported[0].ProgressLogs[0].User != imported[0] {
				t.Error("expected log owner to be restored")
			}
			if !imported[0].CreatedAt.Equal(fixedNow) {
				t.Errorf("CreatedAt = %v, want %v", imported[0].CreatedAt, fixedNow)
			}
		})
	}
}

func TestExportOverwrites(t *testing.T) {
	ctx := context.Background()
	r, users, _ := newTestReconcile(t)

	mustAddUser(t, users, "Ana", "ana@x.com")
	path, err := r.ExportUsers(ctx, "")
	assertNoError(t, err)

	_, err = users.Reset(ctx)
	assertNoError(t, err)
	_, err = r.ExportUsers(ctx, "")
	assertNoError(t, err)

	data, err := os.ReadFile(path)
	assertNoError(t, err)
	assertEqual(t, "[]", strings.TrimSpace(string(data)))
}

func TestImportUsersMissingOrBroken(t *testing.T) {
	r, _, paths := newTestReconcile(t)

	users, from := r.ImportUsers("nothing-here.json")
	assertEqual(t, 0, len(users))
	assertEqual(t, "", from)
	if users == nil {
		t.Error("expected empty slice, got nil")
	}

	empty := filepath.Join(paths.Root, "empty.json")
	os.WriteFile(empty, []byte("  \n"), 0644)
	users, from = r.ImportUsers("empty.json")
	assertEqual(t, 0, len(users))
	assertEqual(t, empty, from)

	broken := filepath.Join(paths.Root, "broken.json")
	os.WriteFile(broken, []byte(`[{"nickname": `), 0644)
	users, from = r.ImportUsers("broken.json")
	assertEqual(t, 0, len(users))
	assertEqual(t, broken, from)
}

func TestImportUsersFallsBackToDefaultFile(t *testing.T) {
	r, _, paths := newTestReconcile(t)

	data := `[{"nickname": "Ana", "email": "ana@x.com", "progressLogs": []}]`
	os.WriteFile(paths.DefaultImportPath(), []byte(data), 0644)

	users, from := r.ImportUsers("missing.json")
	assertEqual(t, paths.DefaultImportPath(), from)
	assertEqual(t, 1, len(users))
}

func TestExportSummary(t *testing.T) {
	r, _, paths := newTestReconcile(t)

	path, err := r.ExportSummary("", 4, 9)
	assertNoError(t, err)
	assertEqual(t, filepath.Join(paths.Root, "fyora_summary", "fyora_summary.txt"), path)

	data, err := os.ReadFile(path)
	assertNoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assertEqual(t, 4, len(lines))
	assertEqual(t, "--- Fyora Admin Summary Report ---", lines[0])
	assertEqual(t, "Report Date: 2026-10-17 10:00:00", lines[1])
	assertEqual(t, "Total Users: 4", lines[2])
	assertEqual(t, "Total Progress Logs: 9", lines[3])

	abs := filepath.Join(t.TempDir(), "custom", "report.txt")
	path, err = r.ExportSummary(abs, 0, 0)
	assertNoError(t, err)
	assertEqual(t, abs, path)
}

func TestMergeUsers(t *testing.T) {
	ctx := context.Background()
	r, users, _ := newTestReconcile(t)

	mustAddUser(t, users, "Ana", "ana@x.com")
	mustAddUser(t, users, "Bea", "bea@x.com")

	withLog := &domain.User{ID: 77, Nickname: "Dan", Email: "dan@x.com"}
	withLog.AddLog(&domain.ProgressLog{ID: 500, DaysWithoutGambling: 30, Achievement: "A month"})

	imported := []*domain.User{
		{ID: 1, Nickname: "ANA", Email: "new@x.com"},   // nickname match
		{ID: 2, Nickname: "Beatriz", Email: "BEA@x.com"}, // email match
		{ID: 3, Nickname: "Cid", Email: "cid@x.com"},
		withLog,
		{ID: 4, Nickname: "cid", Email: "other@x.com"}, // matches earlier row in batch
		{ID: 5, Nickname: "Eve", Email: "not-an-email"},
	}

	result, err := r.MergeUsers(ctx, imported)
	assertNoError(t, err)
	assertEqual(t, 6, result.Read)
	assertEqual(t, 2, result.Inserted)
	assertEqual(t, 4, result.Skipped)
	assertEqual(t, 1, len(result.Rejected))
	assertEqual(t, "Eve", result.Rejected[0].Nickname)
	if result.RunID == "" {
		t.Error("expected run id")
	}

	all, err := users.GetAllUsers(ctx)
	assertNoError(t, err)
	assertEqual(t, 4, len(all))

	dan := all[3]
	assertEqual(t, "Dan", dan.Nickname)
	if dan.ID == 77 {
		t.Error("expected a fresh id for imported user")
	}
	assertEqual(t, 1, len(dan.ProgressLogs))
	assertEqual(t, dan.ID, dan.ProgressLogs[0].UserID)
	assertEqual(t, "A month", dan.ProgressLogs[0].Achievement)
}

func TestMergeUsersEmpty(t *testing.T) {
	r, _, _ := newTestReconcile(t)
	result, err := r.MergeUsers(context.Background(), nil)
	assertNoError(t, err)
	assertEqual(t, 0, result.Read)
	assertEqual(t, 0, result.Inserted)
}

func TestExportResetImportScenario(t *testing.T) {
	ctx := context.Background()
	r, users, _ := newTestReconcile(t)

	ana := mustAddUser(t, users, "Ana", "ana@x.com")
	_, err := users.AddProgressLog(ctx, ana.ID, domain.NewProgressLog(5, "Week 1"))
	assertNoError(t, err)

	path, err := r.ExportUsers(ctx, "")
	assertNoError(t, err)

	_, err = users.Reset(ctx)
	assertNoError(t, err)

	imported, _ := r.ImportUsers(path)
	result, err := r.MergeUsers(ctx, imported)
	assertNoError(t, err)
	assertEqual(t, 1, result.Inserted)

	all, err := users.GetAllUsers(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(all))
	assertEqual(t, "Ana", all[0].Nickname)
	assertEqual(t, "ana@x.com", all[0].Email)
	assertEqual(t, 1, len(all[0].ProgressLogs))
	assertEqual(t, 5, all[0].ProgressLogs[0].DaysWithoutGambling)
	assertEqual(t, "Week 1", all[0].ProgressLogs[0].Achievement)

	// A second merge of the same file inserts nothing.
	result, err = r.MergeUsers(ctx, imported)
	assertNoError(t, err)
	assertEqual(t, 0, result.Inserted)
	assertEqual(t, 1, result.Skipped)
}
