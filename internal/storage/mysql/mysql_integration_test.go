//go:build integration || !unit

package mysql_test

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"lightbnb/internal/migrations"
	mysqlrepo "lightbnb/internal/storage/mysql"
	"lightbnb/internal/storage/storagetest"
)

// startMySQL runs an isolated MySQL and returns a migrated connection.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	// Let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=lightbnb",
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
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "lightbnb")

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

	if _, err := migrations.Up(db, migrations.MySQL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRepo_MySQL_Suite(t *testing.T) {
	db := startMySQL(t)
	storagetest.RunSuite(t, mysqlrepo.New(db), mysqlrepo.Placeholder)
}

func TestMigrations_MySQL_DownThenUp(t *testing.T) {
	db := startMySQL(t)

	n, err := migrations.Down(db, migrations.MySQL)
	if err != nil || n == 0 {
		t.Fatalf("down: n=%d err=%v", n, err)
	}
	var tables int
	if err := db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'properties'`).Scan(&tables); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if tables != 0 {
		t.Fatalf("properties table still present after rollback")
	}

	if n, err := migrations.Up(db, migrations.MySQL); err != nil || n == 0 {
		t.Fatalf("up after down: n=%d err=%v", n, err)
	}
	storagetest.RunSuite(t, mysqlrepo.New(db), mysqlrepo.Placeholder)
}
