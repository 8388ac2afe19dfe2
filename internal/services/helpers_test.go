package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var errStoreDown = errors.New("store unavailable")

type sessionStub struct {
	identity *entities.Identity
}

func (s sessionStub) CurrentIdentity(ctx context.Context) (entities.Identity, bool) {
	if s.identity == nil {
		return entities.Identity{}, false
	}
	return *s.identity, true
}

// faultyStore fails the chosen operations for paths under the given prefixes.
type faultyStore struct {
	docstore.Store
	failMerge  []string
	failUpdate []string
	failGet    []string
}

func matchesAny(path docstore.Path, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path.String(), prefix) {
			return true
		}
	}
	return false
}

func (s *faultyStore) Get(ctx context.Context, path docstore.Path) (*docstore.Snapshot, error) {
	if matchesAny(path, s.failGet) {
		return nil, errStoreDown
	}
	return s.Store.Get(ctx, path)
}

func (s *faultyStore) Merge(ctx context.Context, path docstore.Path, data docstore.Data) error {
	if matchesAny(path, s.failMerge) {
		return errStoreDown
	}
	return s.Store.Merge(ctx, path, data)
}

func (s *faultyStore) Update(ctx context.Context, path docstore.Path, updates ...docstore.Update) error {
	if matchesAny(path, s.failUpdate) {
		return errStoreDown
	}
	return s.Store.Update(ctx, path, updates...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(start time.Time) *clock {
	return &clock{now: start}
}

// Now returns a strictly increasing time so documents order by creation.
func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	store        *faultyStore
	bus          EventBus.Bus
	session      *sessionStub
	profiles     *ProfileResolver
	jobs         *JobCatalog
	applications *ApplicationWorkflow
	saved        *SavedJobs
	clock        *clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "services.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	sqlStore := docstore.NewSQLStore(db)
	require.NoError(t, sqlStore.Migrate())

	env := &testEnv{
		store:   &faultyStore{Store: sqlStore},
		bus:     EventBus.New(),
		session: &sessionStub{},
		clock:   newClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
	}

	env.profiles = NewProfileResolver(env.store, env.session, env.bus)
	env.profiles.now = env.clock.Now
	env.jobs = NewJobCatalog(env.store, env.bus, 10)
	env.jobs.now = env.clock.Now
	env.applications = NewApplicationWorkflow(env.store, env.jobs, env.profiles, env.bus)
	env.applications.now = env.clock.Now
	env.saved = NewSavedJobs(env.store, env.jobs, env.profiles, env.bus)
	env.saved.now = env.clock.Now
	return env
}

func (e *testEnv) createJob(t *testing.T, input entities.JobInput) string {
	t.Helper()
	if input.Status == "" {
		input.Status = entities.JobOpen
	}
	id, err := e.jobs.CreateJob(context.Background(), input)
	require.NoError(t, err)
	return id
}

func (e *testEnv) get(t *testing.T, path docstore.Path) docstore.Data {
	t.Helper()
	snap, err := e.store.Store.Get(context.Background(), path)
	require.NoError(t, err)
	return snap.Data
}

func (e *testEnv) exists(t *testing.T, path docstore.Path) bool {
	t.Helper()
	_, err := e.store.Store.Get(context.Background(), path)
	if docstore.IsNotFound(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func (e *testEnv) put(t *testing.T, path docstore.Path, data docstore.Data) {
	t.Helper()
	require.NoError(t, e.store.Store.Set(context.Background(), path, data))
}

func float(v float64) *float64 {
	return &v
}
