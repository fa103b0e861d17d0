package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/fs"
	"github.com/trezcool/campusdash/storage/database"
)

// OpenDB opens a fresh, migrated sqlite database that lives as long as the test.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()

	conf := &core.Config{}
	conf.Database.Engine = database.Sqlite
	conf.Database.DataSource = filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = migrateUp(db); err != nil {
		t.Fatalf("OpenDB() failed to migrate: %v", err)
	}
	return db
}

// migrateUp runs the Up section of every embedded migration, in file order.
func migrateUp(db *sqlx.DB) error {
	files, err := fs.Glob(appfs.FS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, name := range files {
		data, err := fs.ReadFile(appfs.FS, name)
		if err != nil {
			return err
		}
		up := string(data)
		if i := strings.Index(up, "-- +goose Down"); i >= 0 {
			up = up[:i]
		}
		up = strings.Replace(up, "-- +goose Up", "", 1)
		for _, stmt := range strings.Split(up, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err = db.Exec(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

// Fixtures inserts test rows straight into the database.
type Fixtures struct {
	t  testing.TB
	db *sqlx.DB
}

func NewFixtures(t testing.TB, db *sqlx.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) exec(query string, args ...interface{}) {
	f.t.Helper()
	if _, err := f.db.Exec(f.db.Rebind(query), args...); err != nil {
		f.t.Fatalf("fixture failed: %v\n%s", err, query)
	}
}

func newID() string {
	return uuid.New().String()
}

func at(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func (f *Fixtures) User(fullName, muid, mobile string, roles ...string) string {
	f.t.Helper()
	id := newID()
	f.exec("INSERT INTO users (id, full_name, muid, email, mobile, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, fullName, muid, muid+"@test.in", mobile, time.Now().UTC())
	for _, role := range roles {
		f.exec("INSERT INTO user_role_link (user_id, role) VALUES (?, ?)", id, role)
	}
	return id
}

func (f *Fixtures) Zone(name string) string {
	f.t.Helper()
	id := newID()
	f.exec("INSERT INTO zone (id, name, created_at) VALUES (?, ?, ?)", id, name, time.Now().UTC())
	return id
}

// District creates a district; an empty zoneID leaves it zoneless.
func (f *Fixtures) District(name, zoneID string) string {
	f.t.Helper()
	id := newID()
	var zone interface{}
	if zoneID != "" {
		zone = zoneID
	}
	f.exec("INSERT INTO district (id, name, zone_id, created_at) VALUES (?, ?, ?, ?)", id, name, zone, time.Now().UTC())
	return id
}

// Organization creates an organisation owned by `userID`; an empty districtID leaves it districtless.
func (f *Fixtures) Organization(userID, title, code, orgType, districtID string) string {
	f.t.Helper()
	id := newID()
	var district interface{}
	if districtID != "" {
		district = districtID
	}
	now := time.Now().UTC()
	f.exec(`INSERT INTO organization (id, title, code, org_type, district_id, created_by_id, updated_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, title, code, orgType, district, userID, userID, now, now)
	return id
}

func (f *Fixtures) College(orgID string, level int) {
	f.t.Helper()
	f.exec("INSERT INTO college (id, level, org_id, created_at) VALUES (?, ?, ?, ?)", newID(), level, orgID, time.Now().UTC())
}

func (f *Fixtures) Link(userID, orgID string, verified bool, createdAt ...time.Time) {
	f.t.Helper()
	f.exec("INSERT INTO user_organization_link (id, user_id, org_id, verified, created_at) VALUES (?, ?, ?, ?, ?)",
		newID(), userID, orgID, verified, at(createdAt))
}

// TotalKarma sets the cached karma of a user; nil stores NULL.
func (f *Fixtures) TotalKarma(userID string, karma *int64) {
	f.t.Helper()
	var val interface{}
	if karma != nil {
		val = *karma
	}
	now := time.Now().UTC()
	f.exec("INSERT INTO total_karma (id, user_id, karma, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		newID(), userID, val, now, now)
}

func (f *Fixtures) Activity(userID string, karma int, createdAt time.Time) {
	f.t.Helper()
	f.exec("INSERT INTO karma_activity_log (id, user_id, karma, created_at) VALUES (?, ?, ?, ?)",
		newID(), userID, karma, createdAt.UTC())
}

func (f *Fixtures) Level(name string, order int) string {
	f.t.Helper()
	id := newID()
	f.exec("INSERT INTO level (id, name, level_order, created_at) VALUES (?, ?, ?, ?)", id, name, order, time.Now().UTC())
	return id
}

func (f *Fixtures) UserLevel(userID, levelID string) {
	f.t.Helper()
	f.exec("INSERT INTO user_lvl_link (id, user_id, level_id, created_at) VALUES (?, ?, ?, ?)",
		newID(), userID, levelID, time.Now().UTC())
}

func Int64Ptr(i int64) *int64 {
	return &i
}
