//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	mysqlrepo "antifake/internal/storage/mysql"
)

func pint64(v int64) *int64 { return &v }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=antifake",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "antifake")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_SnapshotsAndMisses(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	const article = int64(98892471)

	// first snapshot
	if err := repo.AddSnapshot(ctx, article, pint64(199900), pint64(149900)); err != nil {
		t.Fatalf("AddSnapshot: %v", err)
	}
	// identical snapshot is skipped
	if err := repo.AddSnapshot(ctx, article, pint64(199900), pint64(149900)); err != nil {
		t.Fatalf("AddSnapshot (dup): %v", err)
	}
	// a price change is recorded
	if err := repo.AddSnapshot(ctx, article, pint64(199900), pint64(139900)); err != nil {
		t.Fatalf("AddSnapshot (change): %v", err)
	}
	// prices gone entirely (out of stock) is a change too
	if err := repo.AddSnapshot(ctx, article, nil, nil); err != nil {
		t.Fatalf("AddSnapshot (nil): %v", err)
	}

	hist, err := repo.History(ctx, article, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("expected 3 points (dup skipped), got %d: %+v", len(hist), hist)
	}
	if hist[0].ProductU != nil {
		t.Fatalf("newest point should have nil price: %+v", hist[0])
	}
	if hist[1].ProductU == nil || *hist[1].ProductU != 139900 {
		t.Fatalf("unexpected order: %+v", hist)
	}

	if got, _ := repo.History(ctx, 1, 10); len(got) != 0 {
		t.Fatalf("unknown article should have empty history: %+v", got)
	}

	// misses are keyed by article; a repeat updates in place
	if err := repo.LogMiss(ctx, article, 404, "card"); err != nil {
		t.Fatalf("LogMiss: %v", err)
	}
	if err := repo.LogMiss(ctx, article, 502, "feedbacks"); err != nil {
		t.Fatalf("LogMiss (repeat): %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM fetch_misses WHERE article=?", article).Scan(&n); err != nil {
		t.Fatalf("count misses: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected single miss row, got %d", n)
	}
	var status int
	if err := db.QueryRow("SELECT http_status FROM fetch_misses WHERE article=?", article).Scan(&status); err != nil {
		t.Fatalf("read miss: %v", err)
	}
	if status != 502 {
		t.Fatalf("miss row not updated, status=%d", status)
	}
}
