package schedule

import (
	"context"
	"time"

	"bookwise/internal/apperr"
	"bookwise/internal/timeutil"

	"github.com/teambition/rrule-go"
)

var frequencies = map[string]rrule.Frequency{
	FreqDaily:   rrule.DAILY,
	FreqWeekly:  rrule.WEEKLY,
	FreqMonthly: rrule.MONTHLY,
	FreqYearly:  rrule.YEARLY,
}

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
	"SU": rrule.SU,
}

// Engine expands recurrence definitions into occurrence timestamps.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Validate checks the recurrence definition without touching the store.
// Malformed definitions are rejected here, at creation time, so expansion
// can assume a well-formed rule.
func (e *Engine) Validate(s *RecurringSchedule) error {
	if _, ok := frequencies[s.Frequency]; !ok {
		return apperr.Ef(apperr.KindValidation, "unknown frequency %q", s.Frequency)
	}
	if s.Interval < 1 {
		return apperr.Ef(apperr.KindValidation, "interval must be >= 1, got %d", s.Interval)
	}
	if s.Count != nil && *s.Count < 1 {
		return apperr.Ef(apperr.KindValidation, "count must be >= 1, got %d", *s.Count)
	}
	for _, wd := range s.ByWeekday {
		if _, ok := weekdays[wd]; !ok {
			return apperr.Ef(apperr.KindValidation, "unknown weekday %q", wd)
		}
	}
	if s.WeekStart != "" {
		if _, ok := weekdays[s.WeekStart]; !ok {
			return apperr.Ef(apperr.KindValidation, "unknown week start %q", s.WeekStart)
		}
	}
	if err := validateRange(s.ByMonthDay, 31, "by_month_day"); err != nil {
		return err
	}
	if err := validateRange(s.ByMonth, 12, "by_month"); err != nil {
		return err
	}
	if err := validateRange(s.BySetPos, 366, "by_set_pos"); err != nil {
		return err
	}
	if err := validateRange(s.ByYearDay, 366, "by_year_day"); err != nil {
		return err
	}
	if err := validateRange(s.ByWeekNo, 53, "by_week_no"); err != nil {
		return err
	}
	if _, err := timeutil.ParseClock(s.StartTime); err != nil {
		return apperr.Ef(apperr.KindValidation, "invalid start time %q", s.StartTime)
	}
	if s.DurationMinutes < 1 {
		return apperr.Ef(apperr.KindValidation, "duration must be >= 1 minute, got %d", s.DurationMinutes)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return apperr.Ef(apperr.KindValidation, "unknown timezone %q", s.Timezone)
		}
	}

	rule, err := e.buildRule(s)
	if err != nil {
		return apperr.Ef(apperr.KindValidation, "recurrence definition does not parse: %v", err)
	}

	// The definition must produce at least one occurrence before its own
	// bounds run out.
	first := rule.After(s.DtStart.Add(-time.Second), true)
	if first.IsZero() {
		return apperr.E(apperr.KindValidation, "recurrence definition yields no occurrences")
	}
	if s.DtEnd != nil && first.After(*s.DtEnd) {
		return apperr.E(apperr.KindValidation, "recurrence definition yields no occurrences before dtend")
	}

	return nil
}

func validateRange(values []int64, max int64, field string) error {
	for _, v := range values {
		if v == 0 || v < -max || v > max {
			return apperr.Ef(apperr.KindValidation, "%s value %d out of range", field, v)
		}
	}
	return nil
}

func (e *Engine) buildRule(s *RecurringSchedule) (*rrule.RRule, error) {
	loc := time.UTC
	if s.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(s.Timezone); err != nil {
			return nil, err
		}
	}

	clock, err := timeutil.ParseClock(s.StartTime)
	if err != nil {
		return nil, err
	}
	dtstart := timeutil.AtClock(s.DtStart.In(loc), clock)

	opt := rrule.ROption{
		Freq:     frequencies[s.Frequency],
		Interval: s.Interval,
		Dtstart:  dtstart,
	}
	if s.Count != nil {
		opt.Count = *s.Count
	}
	if s.Until != nil {
		opt.Until = s.Until.In(loc)
	}
	if s.WeekStart != "" {
		opt.Wkst = weekdays[s.WeekStart]
	}
	for _, wd := range s.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, weekdays[wd])
	}
	opt.Bymonthday = toInts(s.ByMonthDay)
	opt.Bymonth = toInts(s.ByMonth)
	opt.Bysetpos = toInts(s.BySetPos)
	opt.Byyearday = toInts(s.ByYearDay)
	opt.Byweekno = toInts(s.ByWeekNo)

	return rrule.NewRRule(opt)
}

func toInts(values []int64) []int {
	if len(values) == 0 {
		return nil
	}
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

// Occurrences expands the schedule into occurrence start times intersecting
// [windowStart, windowEnd], with exception and exdate slots removed. Both
// CANCELLED and RESCHEDULED exceptions suppress the original slot; the
// rescheduled instance is the caller's event to represent.
func (e *Engine) Occurrences(ctx context.Context, organizationID, scheduleID int64, windowStart, windowEnd time.Time) ([]time.Time, error) {
	s, err := e.repo.GetByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}

	exceptions, err := e.repo.ListExceptions(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	return e.expand(s, exceptions, windowStart, windowEnd)
}

func (e *Engine) expand(s *RecurringSchedule, exceptions []RecurrenceException, windowStart, windowEnd time.Time) ([]time.Time, error) {
	rule, err := e.buildRule(s)
	if err != nil {
		return nil, apperr.Ef(apperr.KindValidation, "recurrence definition does not parse: %v", err)
	}

	end := windowEnd
	if s.DtEnd != nil && s.DtEnd.Before(end) {
		end = *s.DtEnd
	}

	suppressed := make(map[int64]struct{}, len(exceptions)+len(s.Exdates))
	for _, ex := range exceptions {
		suppressed[ex.OriginalDateTime.Unix()] = struct{}{}
	}
	for _, ex := range s.Exdates {
		suppressed[ex.Unix()] = struct{}{}
	}

	var occurrences []time.Time
	for _, occ := range rule.Between(windowStart, end, true) {
		if _, skip := suppressed[occ.Unix()]; skip {
			continue
		}
		occurrences = append(occurrences, occ)
	}

	return occurrences, nil
}
