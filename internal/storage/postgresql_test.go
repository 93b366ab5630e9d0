package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

func TestStorage_Users(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	u := f.user(models.RoleUser)

	t.Run("get by username and id", func(t *testing.T) {
		got, err := s.GetUserByUsername(ctx, u.Username)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, models.EffectiveNone, got.SubscriptionStatus)

		got, err = s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("duplicate is a validation error", func(t *testing.T) {
		dup := u
		dup.ID = uuid.NewString()
		_, err := s.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = s.GetUserByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, s.UpdateUserRole(ctx, u.ID, models.RoleSupport))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSupport, got.Role)

		assert.ErrorIs(t, s.UpdateUserRole(ctx, uuid.NewString(), models.RoleAdmin), apperr.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		f.user(models.RoleUser)
		users, err := s.ListUsers(ctx, time.Now().UTC(), 10, 0)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = s.ListUsers(ctx, time.Now().UTC(), 1, 1)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestStorage_ListUsersResolvesSubscription(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := f.plan(30)

	lapsed := f.user(models.RoleUser)
	old := f.subscription(lapsed.ID, p.ID)
	start := now.AddDate(0, -2, 0)
	require.NoError(t, s.ActivateSubscription(ctx, old.ID, start, start.AddDate(0, 0, 30)))
	require.NoError(t, s.UpdateUserSubscriptionCache(ctx, lapsed.ID, models.EffectiveActive))

	current := f.user(models.RoleUser)
	sub := f.subscription(current.ID, p.ID)
	require.NoError(t, s.ActivateSubscription(ctx, sub.ID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 29)))

	waiting := f.user(models.RoleUser)
	f.subscription(waiting.ID, p.ID)

	fresh := f.user(models.RoleUser)

	users, err := s.ListUsers(ctx, now, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 4)

	got := map[string]models.EffectiveStatus{}
	for _, u := range users {
		got[u.ID] = u.SubscriptionStatus
	}
	assert.Equal(t, models.EffectiveExpired, got[lapsed.ID], "stale stored active must not leak")
	assert.Equal(t, models.EffectiveActive, got[current.ID])
	assert.Equal(t, models.EffectivePending, got[waiting.ID])
	assert.Equal(t, models.EffectiveNone, got[fresh.ID])
}

func TestStorage_Plans(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	p := f.plan(30)

	got, err := s.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Features{"signals", "webinars"}, got.Features)
	assert.Equal(t, 30, got.DurationDays)

	p.Price = 9900
	p.Popular = true
	p.Features = nil
	require.NoError(t, s.UpdatePlan(ctx, p))

	got, err = s.GetPlan(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9900), got.Price)
	assert.True(t, got.Popular)
	assert.Empty(t, got.Features)

	cheap := f.plan(7)
	cheap.Price = 100
	require.NoError(t, s.UpdatePlan(ctx, cheap))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, cheap.ID, plans[0].ID)

	dup := p
	dup.ID = uuid.NewString()
	_, err = s.CreatePlan(ctx, dup)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.GetPlan(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorage_Subscriptions(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	u := f.user(models.RoleUser)
	p := f.plan(30)

	none, err := s.GetSubscription(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	sub := f.subscription(u.ID, p.ID)

	got, err := s.GetSubscription(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, models.SubscriptionPending, got.Status)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)

	plan, err := s.GetPlanBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, plan.ID)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	require.NoError(t, s.ActivateSubscription(ctx, sub.ID, start, end))

	got, err = s.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.Status)
	require.NotNil(t, got.EndDate)
	assert.True(t, end.Equal(*got.EndDate))

	err = s.ActivateSubscription(ctx, sub.ID, start, end)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	err = s.ActivateSubscription(ctx, uuid.NewString(), start, end)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	expiring, err := s.FindSubscriptionsExpiringBetween(ctx, end.Add(-time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, u.Email, expiring[0].Email)
	assert.Equal(t, p.Name, expiring[0].PlanName)

	expiring, err = s.FindSubscriptionsExpiringBetween(ctx, end.Add(time.Hour), end.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, expiring)
}

func TestStorage_PaymentReviewCAS(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	admin := f.user(models.RoleAdmin)
	u := f.user(models.RoleUser)
	sub := f.subscription(u.ID, f.plan(30).ID)
	pay := f.payment(sub)

	now := time.Now().UTC().Truncate(time.Second)
	review := models.Review{PaymentID: pay.ID, Decision: models.PaymentApproved, AdminNotes: "ok"}

	updated, err := s.UpdatePaymentStatus(ctx, review, admin.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentApproved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, admin.ID, *updated.ReviewedBy)
	require.NotNil(t, updated.ReviewedAt)
	assert.True(t, now.Equal(*updated.ReviewedAt))

	_, err = s.UpdatePaymentStatus(ctx, review, admin.ID, now)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	review.PaymentID = uuid.NewString()
	_, err = s.UpdatePaymentStatus(ctx, review, admin.ID, now)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorage_ConcurrentReview(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	admin := f.user(models.RoleAdmin)
	u := f.user(models.RoleUser)
	plan := f.plan(30)
	sub := f.subscription(u.ID, plan.ID)
	pay := f.payment(sub)

	review := func(decision models.PaymentStatus) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			now := time.Now().UTC()
			if _, err := s.UpdatePaymentStatus(ctx, models.Review{PaymentID: pay.ID, Decision: decision}, admin.ID, now); err != nil {
				return err
			}
			if decision != models.PaymentApproved {
				return nil
			}
			p, err := s.GetPlanBySubscription(ctx, sub.ID)
			if err != nil {
				return err
			}
			if err := s.ActivateSubscription(ctx, sub.ID, now, now.AddDate(0, 0, p.DurationDays)); err != nil {
				return err
			}
			return s.UpdateUserSubscriptionCache(ctx, u.ID, models.EffectiveActive)
		})
	}

	decisions := []models.PaymentStatus{models.PaymentApproved, models.PaymentRejected}
	errs := make([]error, len(decisions))
	var wg sync.WaitGroup
	for i, d := range decisions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = review(d)
		}()
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrInvalidState):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)

	got, err := s.GetPayment(ctx, pay.ID)
	require.NoError(t, err)
	gotSub, err := s.GetSubscriptionByID(ctx, sub.ID)
	require.NoError(t, err)
	user, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)

	if got.Status == models.PaymentApproved {
		assert.Equal(t, models.SubscriptionActive, gotSub.Status)
		assert.Equal(t, models.EffectiveActive, user.SubscriptionStatus)
	} else {
		assert.Equal(t, models.PaymentRejected, got.Status)
		assert.Equal(t, models.SubscriptionPending, gotSub.Status)
		assert.Equal(t, models.EffectiveNone, user.SubscriptionStatus)
	}
}

func TestStorage_InTxRollback(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	u := f.user(models.RoleUser)
	sub := f.subscription(u.ID, f.plan(30).ID)
	pay := f.payment(sub)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context) error {
		_, err := s.UpdatePaymentStatus(ctx, models.Review{PaymentID: pay.ID, Decision: models.PaymentApproved}, u.ID, time.Now())
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetPayment(ctx, pay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
	assert.Nil(t, got.ReviewedAt)
}

func TestStorage_PaymentLists(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	u := f.user(models.RoleUser)
	other := f.user(models.RoleUser)
	p1 := f.payment(f.subscription(u.ID, f.plan(30).ID))
	f.payment(f.subscription(other.ID, f.plan(30).ID))

	mine, err := s.ListPaymentsByUser(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p1.ID, mine[0].ID)
	assert.Nil(t, mine[0].ReviewedBy)

	pending, err := s.ListPaymentsByStatus(ctx, models.PaymentPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	stats, err := s.DashboardStats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 2, stats.PendingPayments)
	assert.Equal(t, 0, stats.ActiveSubscriptions)
	assert.Equal(t, int64(0), stats.Revenue)
}

func TestStorage_CoursesAndProgress(t *testing.T) {
	s := setupTestDatabase(t)
	f := testFactory{t: t, s: s}
	ctx := context.Background()

	u := f.user(models.RoleUser)
	course := models.Course{ID: uuid.NewString(), Slug: "price-action", Title: "Price action"}
	lessons := []models.Lesson{
		{ID: uuid.NewString(), Title: "Intro", Position: 1},
		{ID: uuid.NewString(), Title: "Levels", Position: 2},
	}
	_, err := s.CreateCourse(ctx, course, lessons)
	require.NoError(t, err)

	_, err = s.CreateCourse(ctx, models.Course{ID: uuid.NewString(), Slug: "price-action"}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := s.GetCourseBySlug(ctx, "price-action")
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.ID)

	list, err := s.ListLessons(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Intro", list[0].Title)

	n, err := s.CountLessons(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mark := models.Progress{UserID: u.ID, CourseID: course.ID, LessonID: lessons[1].ID}
	require.NoError(t, s.MarkLessonCompleted(ctx, mark, time.Now()))
	require.NoError(t, s.MarkLessonCompleted(ctx, mark, time.Now()), "marking twice is idempotent")

	done, err := s.ListCompletedLessons(ctx, u.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lessons[1].ID}, done)

	wrongCourse := models.Progress{UserID: u.ID, CourseID: uuid.NewString(), LessonID: lessons[0].ID}
	assert.ErrorIs(t, s.MarkLessonCompleted(ctx, wrongCourse, time.Now()), apperr.ErrNotFound)

	_, err = s.GetCourseBySlug(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
