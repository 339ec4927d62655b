package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// createTestCompany inserts a company and returns it.
func createTestCompany(t *testing.T, setup *TestDatabaseSetup, name, publicID string) company.Company {
	t.Helper()
	created, err := postgresql.NewCompanyRepository(setup.DB).Create(context.Background(), company.Company{
		Name:     name,
		PublicID: publicID,
	})
	require.NoError(t, err)
	return created
}

// createTestUser inserts a verified employee of companyID.
func createTestUser(t *testing.T, setup *TestDatabaseSetup, companyID, email string) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	created, err := postgresql.NewUserRepository(setup.DB).Create(context.Background(), user.User{
		Email:         email,
		PasswordHash:  string(hash),
		Name:          "Test User",
		Role:          user.RoleEmployee,
		CompanyID:     &companyID,
		EmailVerified: true,
	})
	require.NoError(t, err)
	return created
}

// ===== USER REPOSITORY TESTS =====

func TestUserRepository_Create_Success(t *testing.T) {
	setup := NewTestDatabase(t)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")

	created := createTestUser(t, setup, comp.ID, "user@example.com")

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user@example.com", created.Email)
	assert.Equal(t, user.RoleEmployee, created.Role)
	require.NotNil(t, created.CompanyName)
	assert.Equal(t, "Acme", *created.CompanyName)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	setup := NewTestDatabase(t)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	createTestUser(t, setup, comp.ID, "dup@example.com")

	_, err := postgresql.NewUserRepository(setup.DB).Create(context.Background(), user.User{
		Email:        "dup@example.com",
		PasswordHash: "x",
		Name:         "Other",
		Role:         user.RoleEmployee,
		CompanyID:    &comp.ID,
	})

	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	setup := NewTestDatabase(t)

	_, err := postgresql.NewUserRepository(setup.DB).GetByEmail(context.Background(), "notfound@example.com")

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_VerificationLifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "verify@example.com")

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.SetVerificationToken(ctx, u.ID, "token-abc", expires))

	found, err := repo.GetByVerificationToken(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, repo.MarkEmailVerified(ctx, u.ID, time.Now()))

	_, err = repo.GetByVerificationToken(ctx, "token-abc")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_PurgeExpiredVerificationTokens(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	stale := createTestUser(t, setup, comp.ID, "stale@example.com")
	fresh := createTestUser(t, setup, comp.ID, "fresh@example.com")

	now := time.Now()
	require.NoError(t, repo.SetVerificationToken(ctx, stale.ID, "stale-token", now.Add(-time.Hour)))
	require.NoError(t, repo.SetVerificationToken(ctx, fresh.ID, "fresh-token", now.Add(time.Hour)))

	purged, err := repo.PurgeExpiredVerificationTokens(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	_, err = repo.GetByVerificationToken(ctx, "fresh-token")
	assert.NoError(t, err)
}

func TestUserRepository_List_FilterByCompany(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewUserRepository(setup.DB)
	a := createTestCompany(t, setup, "A", "apublicid00000000001")
	b := createTestCompany(t, setup, "B", "bpublicid00000000001")
	createTestUser(t, setup, a.ID, "a1@example.com")
	createTestUser(t, setup, a.ID, "a2@example.com")
	createTestUser(t, setup, b.ID, "b1@example.com")

	users, total, err := repo.List(context.Background(), user.UserFilter{CompanyID: &a.ID, Page: 1, Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 1)
}

// ===== COMPANY REPOSITORY TESTS =====

func TestCompanyRepository_GetByPublicID_Success(t *testing.T) {
	setup := NewTestDatabase(t)
	created := createTestCompany(t, setup, "Acme", "acmepublicid00000001")

	found, err := postgresql.NewCompanyRepository(setup.DB).GetByPublicID(context.Background(), "acmepublicid00000001")

	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.NotNil(t, found.Settings)
}

func TestCompanyRepository_Delete_WithUsers(t *testing.T) {
	setup := NewTestDatabase(t)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	createTestUser(t, setup, comp.ID, "member@example.com")

	err := postgresql.NewCompanyRepository(setup.DB).Delete(context.Background(), comp.ID)

	assert.ErrorIs(t, err, company.ErrCompanyHasUsers)
}

func TestCompanyRepository_Update_Success(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewCompanyRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")

	comp.Name = "Acme Renamed"
	comp.Settings = map[string]any{"workStart": "09:00"}
	updated, err := repo.Update(context.Background(), comp)

	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", updated.Name)
	assert.Equal(t, "09:00", updated.Settings["workStart"])
}

// ===== ATTENDANCE REPOSITORY TESTS =====

func TestAttendanceRepository_Create_DuplicateDay(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "clock@example.com")

	rec := attendance.Record{UserID: u.ID, Date: date(2024, 3, 1), ClockInTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	_, err := repo.Create(ctx, rec)
	require.NoError(t, err)

	_, err = repo.Create(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestAttendanceRepository_ConcurrentClockIn(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "race@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(context.Background(), attendance.Record{
				UserID:      u.ID,
				Date:        date(2024, 3, 1),
				ClockInTime: time.Now(),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAttendanceRepository_ListForPeriod(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "period@example.com")

	for _, d := range []time.Time{date(2024, 2, 29), date(2024, 3, 1), date(2024, 3, 31), date(2024, 4, 1)} {
		_, err := repo.Create(ctx, attendance.Record{UserID: u.ID, Date: d, ClockInTime: d.Add(time.Hour)})
		require.NoError(t, err)
	}

	records, err := repo.ListForPeriod(ctx, attendance.PeriodFilter{
		CompanyID: &comp.ID,
		From:      date(2024, 3, 1),
		To:        date(2024, 3, 31),
	})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Date.Equal(date(2024, 3, 1)))
	assert.True(t, records[1].Date.Equal(date(2024, 3, 31)))
}

// ===== LEAVE REQUEST REPOSITORY TESTS =====

func TestLeaveRequestRepository_ReviewOnlyOnce(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "leave@example.com")

	created, err := repo.Create(ctx, leave.LeaveRequest{
		UserID:    u.ID,
		StartDate: date(2024, 3, 4),
		EndDate:   date(2024, 3, 5),
		LeaveType: leave.TypePaid,
		Reason:    "family",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, created.Status)

	approved, err := repo.Review(ctx, created.ID, leave.StatusApproved, strPtr("ok"), u.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)

	_, err = repo.Review(ctx, created.ID, leave.StatusRejected, nil, u.ID, time.Now())
	assert.ErrorIs(t, err, leave.ErrLeaveNotPending)

	approved.Reason = "changed"
	_, err = repo.UpdatePending(ctx, approved)
	assert.ErrorIs(t, err, leave.ErrLeaveNotPending)
}

func TestLeaveRequestRepository_ListOverlapping(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(setup.DB)
	comp := createTestCompany(t, setup, "Acme", "acmepublicid00000001")
	u := createTestUser(t, setup, comp.ID, "overlap@example.com")

	ranges := [][2]time.Time{
		{date(2024, 2, 27), date(2024, 3, 2)},
		{date(2024, 3, 10), date(2024, 3, 10)},
		{date(2024, 4, 1), date(2024, 4, 3)},
	}
	for _, r := range ranges {
		_, err := repo.Create(ctx, leave.LeaveRequest{UserID: u.ID, StartDate: r[0], EndDate: r[1], LeaveType: leave.TypePaid})
		require.NoError(t, err)
	}

	found, err := repo.ListOverlapping(ctx, leave.OverlapFilter{
		CompanyID: &comp.ID,
		From:      date(2024, 3, 1),
		To:        date(2024, 3, 31),
	})

	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestLeaveRequestRepository_GetByID_NotFound(t *testing.T) {
	setup := NewTestDatabase(t)

	_, err := postgresql.NewLeaveRequestRepository(setup.DB).GetByID(context.Background(), "0190a000-0000-7000-8000-000000000000")

	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestGetByID_MalformedIDIsNotFound(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := postgresql.NewLeaveRequestRepository(setup.DB).GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	_, err = postgresql.NewUserRepository(setup.DB).GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = postgresql.NewCompanyRepository(setup.DB).GetByID(ctx, "acme")
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}
