//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"epaws/internal/adapters/storage/postgres"
	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/geo"
	"epaws/internal/domain/ledger"
	"epaws/internal/domain/notifications"
	"epaws/internal/domain/organizations"
	"epaws/internal/domain/reports"
	"epaws/internal/platform/sentinel"
)

type PostgresSuite struct {
	suite.Suite

	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	now       time.Time
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ctr, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("epaws"),
		tcpostgres.WithUsername("epaws"),
		tcpostgres.WithPassword("epaws"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = ctr

	dsn, err := ctr.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = postgres.Open(dsn)
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(s.ctx, s.db))
	// dos veces: el esquema es idempotente
	s.Require().NoError(postgres.Migrate(s.ctx, s.db))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE organizations, reports, animals, adoptions, medical_records, notifications`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) org(id string, kind organizations.Kind, loc *geo.Point, verified bool) {
	err := postgres.NewOrganizationsRepo(s.db).Create(s.ctx, organizations.Organization{
		ID: id, Kind: kind, Name: id, Location: loc, Verified: verified, Active: true,
		Specialties: []string{"felinos"},
		CreatedAt:   s.now, UpdatedAt: s.now,
	})
	s.Require().NoError(err)
}

func (s *PostgresSuite) TestReports_VersionedUpdateAndNearby() {
	repo := postgres.NewReportsRepo(s.db)
	base := reports.Report{
		ReporterID: "citizen-1", Description: "Perro herido", Urgency: reports.UrgencyHigh,
		AnimalType: reports.AnimalDog, Status: reports.StatusPending,
		PhotoURLs: []string{"https://img.example/1.jpg"},
		Version:   1, CreatedAt: s.now, UpdatedAt: s.now,
	}

	near := base
	near.ID, near.Location = "r-near", geo.Point{Lon: -70.61, Lat: -33.45}
	same := base
	same.ID, same.Location = "r-same", geo.Point{Lon: -70.6, Lat: -33.45}
	far := base
	far.ID, far.Location = "r-far", geo.Point{Lon: -70.0, Lat: -33.45}
	for _, r := range []reports.Report{near, same, far} {
		s.Require().NoError(repo.Create(s.ctx, r))
	}

	got, err := repo.GetByID(s.ctx, "r-near")
	s.Require().NoError(err)
	s.Equal([]string{"https://img.example/1.jpg"}, got.PhotoURLs)

	next := got
	next.Status = reports.StatusRescued
	rescued := s.now.Add(time.Hour)
	next.RescuedAt = &rescued
	next.Version = 2
	s.Require().NoError(repo.Update(s.ctx, next, 1))

	stale := got
	stale.Notes = "otra escritura"
	stale.Version = 2
	s.ErrorIs(repo.Update(s.ctx, stale, 1), sentinel.ErrConflict)

	missing := got
	missing.ID = "r-missing"
	s.ErrorIs(repo.Update(s.ctx, missing, 1), sentinel.ErrNotFound)

	q := geo.Query{Origin: geo.Point{Lon: -70.6, Lat: -33.45}, MaxDistance: 10000, Limit: 50}
	res, err := repo.Nearby(s.ctx, q, reports.ActiveStatuses)
	s.Require().NoError(err)
	s.Require().Len(res, 1, "rescued and far reports are excluded")
	s.Equal("r-same", res[0].Report.ID)
	s.InDelta(0, res[0].Distance, 0.01)

	zero := geo.Query{Origin: geo.Point{Lon: -70.6, Lat: -33.45}, MaxDistance: 0, Limit: 50}
	res, err = repo.Nearby(s.ctx, zero, []reports.Status{reports.StatusPending, reports.StatusRescued})
	s.Require().NoError(err)
	s.Len(res, 1)
}

func (s *PostgresSuite) TestAdoptions_PartialUniqueIndex() {
	repo := postgres.NewAdoptionsRepo(s.db)
	mk := func(id string) adoptions.Adoption {
		return adoptions.Adoption{
			ID: id, AnimalID: "animal-1", AdopterID: "adopter-x", OrganizationID: "org-1",
			Message:     "mensaje",
			AdopterInfo: adoptions.AdopterInfo{HomeType: adoptions.HomeHouse, HouseholdMembers: 3},
			Status:      adoptions.StatusPending,
			AppliedAt:   s.now, Version: 1, CreatedAt: s.now, UpdatedAt: s.now,
		}
	}

	first := mk("ad-1")
	s.Require().NoError(repo.Create(s.ctx, first))
	s.ErrorIs(repo.Create(s.ctx, mk("ad-2")), sentinel.ErrConflict)

	active, err := repo.HasActive(s.ctx, "animal-1", "adopter-x")
	s.Require().NoError(err)
	s.True(active)

	got, err := repo.GetByID(s.ctx, "ad-1")
	s.Require().NoError(err)
	s.Equal(3, got.AdopterInfo.HouseholdMembers)

	rejected := got
	rejected.Status = adoptions.StatusRejected
	rejected.ReviewedAt = &s.now
	rejected.Version = 2
	s.Require().NoError(repo.Update(s.ctx, rejected, 1))

	s.Require().NoError(repo.Create(s.ctx, mk("ad-3")), "a rejected application frees the pair")
}

func (s *PostgresSuite) TestAdoptions_ConcurrentInsertsOneWinner() {
	repo := postgres.NewAdoptionsRepo(s.db)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  int
		dup int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(s.ctx, adoptions.Adoption{
				ID: "c-" + string(rune('a'+i)), AnimalID: "animal-9", AdopterID: "adopter-x",
				OrganizationID: "org-1", Message: "m", Status: adoptions.StatusPending,
				AppliedAt: s.now, Version: 1, CreatedAt: s.now, UpdatedAt: s.now,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, sentinel.ErrConflict) {
				dup++
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, ok)
	s.Equal(9, dup)
}

func (s *PostgresSuite) TestAnimals_SoftDeleteHidesRow() {
	repo := postgres.NewAnimalsRepo(s.db)
	a := animals.Animal{
		ID: "a-1", OrganizationID: "org-1", Name: "Luna", Species: animals.SpeciesCat,
		Breed: animals.DefaultBreed, Gender: animals.GenderFemale, Size: animals.SizeSmall,
		PersonalityTraits: []string{"tranquila"}, PhotoURLs: []string{"https://img.example/luna.jpg"},
		Health: animals.HealthInfo{Vaccinated: true},
		Status: animals.StatusAvailable, Version: 1, CreatedAt: s.now, UpdatedAt: s.now,
	}
	s.Require().NoError(repo.Create(s.ctx, a))

	got, err := repo.GetByID(s.ctx, "a-1")
	s.Require().NoError(err)
	s.True(got.Health.Vaccinated)
	s.Equal([]string{"tranquila"}, got.PersonalityTraits)

	got.Deleted = true
	got.Version = 2
	s.Require().NoError(repo.Update(s.ctx, got, 1))

	_, err = repo.GetByID(s.ctx, "a-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(repo.Update(s.ctx, got, 2), sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestLedger_ClampAndConcurrentAdjust() {
	s.org("org-1", organizations.KindOrganization, nil, true)
	store := postgres.NewLedgerStore(s.db)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Adjust(s.ctx, "org-1", ledger.CurrentAnimals, +1)
			s.NoError(err)
		}()
	}
	wg.Wait()

	c, err := store.Get(s.ctx, "org-1")
	s.Require().NoError(err)
	s.EqualValues(40, c.CurrentAnimals)

	v, err := store.Adjust(s.ctx, "org-1", ledger.CurrentAnimals, -100)
	s.Require().NoError(err)
	s.EqualValues(0, v)

	_, err = store.Adjust(s.ctx, "org-missing", ledger.TotalRescues, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestOrganizations_NearbyClinics() {
	s.org("clinic-near", organizations.KindClinic, &geo.Point{Lon: -70.61, Lat: -33.45}, true)
	s.org("clinic-unverified", organizations.KindClinic, &geo.Point{Lon: -70.6, Lat: -33.45}, false)
	s.org("shelter", organizations.KindOrganization, &geo.Point{Lon: -70.6, Lat: -33.45}, true)

	repo := postgres.NewOrganizationsRepo(s.db)
	got, err := repo.NearbyClinics(s.ctx, geo.Query{Origin: geo.Point{Lon: -70.6, Lat: -33.45}, MaxDistance: 20000, Limit: 20})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("clinic-near", got[0].Organization.ID)
	s.Equal([]string{"felinos"}, got[0].Organization.Specialties)
}

func (s *PostgresSuite) TestNotifications_MailboxAndRetention() {
	repo := postgres.NewNotificationsRepo(s.db)
	for i, at := range []time.Time{s.now.Add(-40 * 24 * time.Hour), s.now.Add(-time.Hour), s.now} {
		s.Require().NoError(repo.Create(s.ctx, notifications.Notification{
			ID: "n-" + string(rune('1'+i)), UserID: "u-1", Type: notifications.TypeReportUpdate,
			Title: "t", Body: "b", Related: &notifications.Related{Kind: notifications.RelatedReport, ID: "r-1"},
			CreatedAt: at,
		}))
	}

	list, err := repo.List(s.ctx, "u-1", notifications.ListFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("n-3", list[0].ID)

	_, err = repo.MarkRead(s.ctx, "u-2", "n-1", s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)

	n, err := repo.MarkRead(s.ctx, "u-1", "n-1", s.now)
	s.Require().NoError(err)
	s.True(n.Read)
	s.Require().NotNil(n.Related)
	s.Equal("r-1", n.Related.ID)

	unread := true
	list, err = repo.List(s.ctx, "u-1", notifications.ListFilter{Unread: &unread})
	s.Require().NoError(err)
	s.Len(list, 2)

	count, err := repo.CountUnread(s.ctx, "u-1")
	s.Require().NoError(err)
	s.EqualValues(2, count)

	swept, err := repo.DeleteReadBefore(s.ctx, s.now.Add(-30*24*time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, swept)

	changed, err := repo.MarkAllRead(s.ctx, "u-1", s.now)
	s.Require().NoError(err)
	s.EqualValues(2, changed)

	removed, err := repo.DeleteRead(s.ctx, "u-1")
	s.Require().NoError(err)
	s.EqualValues(2, removed)
}
