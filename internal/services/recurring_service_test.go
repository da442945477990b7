package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func seedSchedule(t *testing.T, env *testEnv, userID int64, mutate func(*core.RecurringSchedule)) *core.RecurringSchedule {
	t.Helper()
	schedule := &core.RecurringSchedule{
		UserID:            userID,
		Title:             "rent",
		Amount:            dec("800.00"),
		Type:              core.TypeExpense,
		Category:          core.CategoryHousing,
		Frequency:         core.Monthly,
		FrequencyInterval: 1,
		StartDate:         testNow,
	}
	if mutate != nil {
		mutate(schedule)
	}
	created, err := env.recurring.Create(context.Background(), schedule)
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return created
}

func TestScheduleCreate_FirstExecutionIsStartDate(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")

	schedule := seedSchedule(t, env, alice, nil)
	if !schedule.Active {
		t.Error("new schedule not active")
	}
	if !schedule.NextExecutionDate.Equal(testNow) {
		t.Errorf("next execution = %v, want start date %v", schedule.NextExecutionDate, testNow)
	}
	if !schedule.LastExecutionDate.IsZero() {
		t.Errorf("last execution = %v, want zero", schedule.LastExecutionDate)
	}

	// Registration alone never materializes anything.
	ts, _ := env.transactions.ByUser(context.Background(), alice)
	if len(ts) != 0 {
		t.Errorf("got %d transactions at registration, want 0", len(ts))
	}
}

func TestScheduleCreate_RejectsUnknownFrequency(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")

	var argErr *core.InvalidArgumentError
	_, err := env.recurring.Create(context.Background(), &core.RecurringSchedule{
		UserID:            alice,
		Title:             "rent",
		Amount:            dec("800.00"),
		Type:              core.TypeExpense,
		Category:          core.CategoryHousing,
		Frequency:         core.Frequency("FORTNIGHTLY"),
		FrequencyInterval: 1,
		StartDate:         testNow,
	})
	if !errors.As(err, &argErr) {
		t.Errorf("err = %v, want InvalidArgumentError", err)
	}
}

func TestMaterializeDue_BehindScheduleExecutesOnceAtNow(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.Frequency = core.Daily
		s.StartDate = testNow.AddDate(0, 0, -10)
	})
	ctx := context.Background()

	// Ten daily occurrences were missed. The sweep never backfills them:
	// one transaction, dated today.
	n, err := env.recurring.MaterializeDue(ctx)
	if err != nil || n != 1 {
		t.Fatalf("MaterializeDue = (%d, %v), want (1, nil)", n, err)
	}

	ts, _ := env.transactions.ByUser(ctx, alice)
	if len(ts) != 1 {
		t.Fatalf("got %d transactions, want 1", len(ts))
	}
	if !ts[0].Date.Equal(testNow) {
		t.Errorf("transaction date = %v, want %v", ts[0].Date, testNow)
	}
	if !ts[0].Recurring || !ts[0].Amount.Equal(dec("800.00")) {
		t.Errorf("transaction = %+v, want recurring 800.00", ts[0])
	}

	loaded, _ := env.recurring.Get(ctx, schedule.ID)
	if !loaded.LastExecutionDate.Equal(testNow) {
		t.Errorf("last execution = %v, want %v", loaded.LastExecutionDate, testNow)
	}
	if !loaded.NextExecutionDate.Equal(testNow.AddDate(0, 0, 1)) {
		t.Errorf("next execution = %v, want %v", loaded.NextExecutionDate, testNow.AddDate(0, 0, 1))
	}

	// Caught up; the same sweep tick has nothing more to do.
	if n, err := env.recurring.MaterializeDue(ctx); err != nil || n != 0 {
		t.Errorf("rerun MaterializeDue = (%d, %v), want (0, nil)", n, err)
	}
}

func TestMaterializeDue_AdvancesBookkeeping(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, nil)
	ctx := context.Background()

	if _, err := env.recurring.MaterializeDue(ctx); err != nil {
		t.Fatalf("MaterializeDue: %v", err)
	}
	loaded, _ := env.recurring.Get(ctx, schedule.ID)
	if !loaded.LastExecutionDate.Equal(testNow) {
		t.Errorf("last execution = %v, want %v", loaded.LastExecutionDate, testNow)
	}
	wantNext := testNow.AddDate(0, 1, 0)
	if !loaded.NextExecutionDate.Equal(wantNext) {
		t.Errorf("next execution = %v, want %v", loaded.NextExecutionDate, wantNext)
	}
}

func TestMaterializeDue_MonthEndClamps(t *testing.T) {
	start := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	env := newTestEnv(start)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.StartDate = start
	})
	ctx := context.Background()

	if _, err := env.recurring.MaterializeDue(ctx); err != nil {
		t.Fatalf("MaterializeDue: %v", err)
	}
	loaded, _ := env.recurring.Get(ctx, schedule.ID)
	wantNext := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	if !loaded.NextExecutionDate.Equal(wantNext) {
		t.Errorf("next execution = %v, want clamped %v", loaded.NextExecutionDate, wantNext)
	}
}

func TestMaterializeDue_DeactivatesPastEndDate(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.Frequency = core.Daily
		s.EndDate = testNow
	})
	ctx := context.Background()

	// Today's occurrence executes; it is not past the end date. The
	// recomputed next execution is, so the schedule retires immediately.
	if n, _ := env.recurring.MaterializeDue(ctx); n != 1 {
		t.Fatalf("MaterializeDue = %d, want 1", n)
	}
	loaded, _ := env.recurring.Get(ctx, schedule.ID)
	if loaded.Active {
		t.Error("schedule still active after its final occurrence")
	}

	later := env.at(testNow.AddDate(0, 0, 1))
	if n, err := later.recurring.MaterializeDue(ctx); err != nil || n != 0 {
		t.Fatalf("MaterializeDue past end = (%d, %v), want (0, nil)", n, err)
	}
}

func TestMaterializeDue_RetiredScheduleIsNeverAnnounced(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.EndDate = testNow.AddDate(0, 0, 10)
		s.NotificationEnabled = true
		s.NotificationDaysBefore = 60
	})
	ctx := context.Background()

	// The monthly follow-up would land past the end date, so the schedule
	// deactivates as soon as its only occurrence executes.
	if n, _ := env.recurring.MaterializeDue(ctx); n != 1 {
		t.Fatalf("MaterializeDue = %d, want 1", n)
	}
	loaded, _ := env.recurring.Get(ctx, schedule.ID)
	if loaded.Active {
		t.Errorf("end date %v precedes next execution %v but schedule is still active",
			loaded.EndDate, loaded.NextExecutionDate)
	}

	// No reminder for an occurrence that will never happen.
	if n, err := env.recurring.NotifyUpcoming(ctx); err != nil || n != 0 {
		t.Errorf("NotifyUpcoming = (%d, %v), want (0, nil) for retired schedule", n, err)
	}
	if len(env.notifier.events) != 0 {
		t.Errorf("notifications = %+v, want none", env.notifier.events)
	}
}

func TestNotifyUpcoming_OncePerOccurrence(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.StartDate = testNow.AddDate(0, 0, 2)
		s.NotificationEnabled = true
		s.NotificationDaysBefore = 3
	})
	ctx := context.Background()

	n, err := env.recurring.NotifyUpcoming(ctx)
	if err != nil || n != 1 {
		t.Fatalf("NotifyUpcoming = (%d, %v), want (1, nil)", n, err)
	}
	if len(env.notifier.events) != 1 || env.notifier.events[0].kind != KindUpcomingRecurrence {
		t.Fatalf("notifications = %+v, want one upcoming-recurrence", env.notifier.events)
	}

	// The same occurrence is never announced twice.
	if n, err := env.recurring.NotifyUpcoming(ctx); err != nil || n != 0 {
		t.Errorf("rerun NotifyUpcoming = (%d, %v), want (0, nil)", n, err)
	}
}

func TestNotifyUpcoming_OutsideWindow(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	seedSchedule(t, env, alice, func(s *core.RecurringSchedule) {
		s.StartDate = testNow.AddDate(0, 0, 10)
		s.NotificationEnabled = true
		s.NotificationDaysBefore = 3
	})

	if n, err := env.recurring.NotifyUpcoming(context.Background()); err != nil || n != 0 {
		t.Errorf("NotifyUpcoming = (%d, %v), want (0, nil) outside window", n, err)
	}
}

func TestScheduleUpdate_EngineOwnsExecutionDates(t *testing.T) {
	env := newTestEnv(testNow)
	alice := seedUser(t, env, "alice")
	schedule := seedSchedule(t, env, alice, nil)
	ctx := context.Background()

	update := *schedule
	update.Title = "bigger rent"
	update.Amount = dec("900.00")
	update.NextExecutionDate = testNow.AddDate(1, 0, 0)
	update.LastExecutionDate = testNow

	updated, err := env.recurring.Update(ctx, &update)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "bigger rent" || !updated.Amount.Equal(dec("900.00")) {
		t.Errorf("template fields not updated: %+v", updated)
	}
	if !updated.NextExecutionDate.Equal(testNow) || !updated.LastExecutionDate.IsZero() {
		t.Errorf("execution dates changed from outside: next=%v last=%v", updated.NextExecutionDate, updated.LastExecutionDate)
	}
}
