package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

// RecurringService materializes schedule templates into real transactions
// and announces upcoming occurrences.
type RecurringService struct {
	store        storage.Store
	clock        core.Clock
	transactions *TransactionService
	notifier     Notifier
}

func NewRecurringService(store storage.Store, clock core.Clock, transactions *TransactionService, notifier Notifier) *RecurringService {
	return &RecurringService{
		store:        store,
		clock:        clock,
		transactions: transactions,
		notifier:     notifier,
	}
}

// Create registers a schedule. Schedules start active with their next
// execution at the start date; the first materialization happens when that
// date arrives, never at registration.
func (s *RecurringService) Create(ctx context.Context, schedule *core.RecurringSchedule) (*core.RecurringSchedule, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, schedule.UserID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	schedule.Active = true
	schedule.LastExecutionDate = time.Time{}
	schedule.NextExecutionDate = schedule.StartDate
	schedule.CreatedAt, schedule.UpdatedAt = now, now
	if err := s.store.Schedules().Save(ctx, schedule); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created recurring schedule",
		"schedule_id", schedule.ID,
		"user_id", schedule.UserID,
		"frequency", schedule.Frequency,
		"next_execution", schedule.NextExecutionDate.Format(time.RFC3339))
	return schedule, nil
}

// Update modifies a schedule's template fields. Execution bookkeeping is
// owned by the engine and cannot be set from outside.
func (s *RecurringService) Update(ctx context.Context, schedule *core.RecurringSchedule) (*core.RecurringSchedule, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	var out *core.RecurringSchedule
	err := s.store.InTx(ctx, func(st storage.Store) error {
		existing, err := st.Schedules().Get(ctx, schedule.ID)
		if err != nil {
			return err
		}
		existing.Title = schedule.Title
		existing.Description = schedule.Description
		existing.Amount = schedule.Amount
		existing.Type = schedule.Type
		existing.Category = schedule.Category
		existing.Frequency = schedule.Frequency
		existing.FrequencyInterval = schedule.FrequencyInterval
		existing.EndDate = schedule.EndDate
		existing.NotificationEnabled = schedule.NotificationEnabled
		existing.NotificationDaysBefore = schedule.NotificationDaysBefore
		existing.Active = schedule.Active
		existing.UpdatedAt = s.clock.Now()
		if err := st.Schedules().Save(ctx, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RecurringService) Get(ctx context.Context, id int64) (*core.RecurringSchedule, error) {
	return s.store.Schedules().Get(ctx, id)
}

func (s *RecurringService) ByUser(ctx context.Context, userID int64) ([]core.RecurringSchedule, error) {
	return s.store.Schedules().ByUser(ctx, userID)
}

// MaterializeDue executes every active schedule whose next execution has
// arrived: one transaction per due schedule per sweep, dated now. A
// schedule several periods behind does not backfill the missed dates; it
// executes once and its bookkeeping jumps to now. Each schedule is
// processed independently.
func (s *RecurringService) MaterializeDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.store.Schedules().ActiveDue(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range due {
		executed, err := s.materialize(ctx, &due[i], now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize schedule",
				"schedule_id", due[i].ID,
				"error", err)
			continue
		}
		if executed {
			created++
		}
	}
	if created > 0 {
		slog.InfoContext(ctx, "Materialized recurring transactions", "count", created)
	}
	return created, nil
}

func (s *RecurringService) materialize(ctx context.Context, schedule *core.RecurringSchedule, now time.Time) (bool, error) {
	// An end date moved below the pending occurrence retires the schedule
	// without executing it.
	if !schedule.EndDate.IsZero() && schedule.EndDate.Before(schedule.NextExecutionDate) {
		schedule.Active = false
		schedule.UpdatedAt = now
		if err := s.store.Schedules().Save(ctx, schedule); err != nil {
			return false, err
		}
		slog.InfoContext(ctx, "Deactivated expired schedule", "schedule_id", schedule.ID)
		return false, nil
	}

	t := &core.Transaction{
		UserID:      schedule.UserID,
		Amount:      schedule.Amount,
		Description: schedule.Title,
		Type:        schedule.Type,
		Category:    schedule.Category,
		Date:        now,
		Recurring:   true,
	}
	if _, err := s.transactions.Create(ctx, t); err != nil {
		return false, err
	}

	next, err := core.AddFrequency(now, schedule.Frequency, schedule.FrequencyInterval)
	if err != nil {
		return false, err
	}
	schedule.LastExecutionDate = now
	schedule.NextExecutionDate = next
	if !schedule.EndDate.IsZero() && schedule.EndDate.Before(next) {
		schedule.Active = false
		slog.InfoContext(ctx, "Schedule completed its final occurrence", "schedule_id", schedule.ID)
	}
	schedule.UpdatedAt = now
	if err := s.store.Schedules().Save(ctx, schedule); err != nil {
		return true, err
	}
	return true, nil
}

// NotifyUpcoming announces occurrences that fall within each schedule's
// notification window. A given occurrence is announced exactly once; the
// schedule remembers the last occurrence it spoke about.
func (s *RecurringService) NotifyUpcoming(ctx context.Context) (int, error) {
	now := s.clock.Now()
	schedules, err := s.store.Schedules().ActiveNotifiable(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	for i := range schedules {
		schedule := &schedules[i]
		occurrence := schedule.NextExecutionDate
		window := occurrence.AddDate(0, 0, -schedule.NotificationDaysBefore)
		if now.Before(window) || schedule.LastNotifiedFor.Equal(occurrence) {
			continue
		}
		schedule.LastNotifiedFor = occurrence
		schedule.UpdatedAt = now
		if err := s.store.Schedules().Save(ctx, schedule); err != nil {
			slog.ErrorContext(ctx, "Failed to mark schedule notified",
				"schedule_id", schedule.ID,
				"error", err)
			continue
		}
		notify(ctx, s.notifier, KindUpcomingRecurrence, schedule.UserID, map[string]string{
			"schedule_id": strconv.FormatInt(schedule.ID, 10),
			"title":       schedule.Title,
			"amount":      schedule.Amount.StringFixed(2),
			"occurs_at":   occurrence.Format(time.RFC3339),
		})
		notified++
	}
	return notified, nil
}
