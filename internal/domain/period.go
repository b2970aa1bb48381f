package domain

import (
	"fmt"
	"time"
)

// Period kinds accepted by the sync entry point. Labels follow the
// commercial naming used by the back office.
type PeriodKind string

const (
	PeriodYesterday    PeriodKind = "ayer"
	PeriodPreviousWeek PeriodKind = "semana-anterior"
	PeriodCurrentWeek  PeriodKind = "semana-actual"
	PeriodCustom       PeriodKind = "personalizado"
)

// PeriodDescriptor selects the time window a sync run is scoped to.
// Start/End are only read for PeriodCustom.
type PeriodDescriptor struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time
}

// PeriodWindow is the resolved absolute [Start, End] range. It is
// computed once per run and immutable; every downstream fetch is
// parameterized by it.
type PeriodWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// The billing week here is the commercial Monday-to-Sunday week. Other
// parts of the wider system use ISO week-of-year definitions; those are
// deliberately not reconciled with this one.

// DayStart returns 00:00:00.000 of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayEnd returns 23:59:59.999 of t's calendar day in loc.
func DayEnd(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, loc)
}

// WeekStart returns Monday 00:00:00.000 of the week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	// Monday-anchored: Sunday counts as the last day of the week.
	offset := (int(local.Weekday()) + 6) % 7
	return DayStart(local.AddDate(0, 0, -offset), loc)
}

// Yesterday returns the full local calendar day before now's day.
func Yesterday(now time.Time, loc *time.Location) PeriodWindow {
	prev := now.In(loc).AddDate(0, 0, -1)
	return PeriodWindow{
		Start: DayStart(prev, loc),
		End:   DayEnd(prev, loc),
		Label: string(PeriodYesterday),
	}
}

// Week returns the commercial week weeksAgo weeks before now's week.
// For weeksAgo == 0 the window is week-to-date: this week's Monday up to
// the current instant. Past weeks close on Sunday 23:59:59.999.
func Week(now time.Time, weeksAgo int, loc *time.Location) PeriodWindow {
	start := WeekStart(now, loc).AddDate(0, 0, -7*weeksAgo)
	if weeksAgo <= 0 {
		return PeriodWindow{Start: start, End: now, Label: string(PeriodCurrentWeek)}
	}
	return PeriodWindow{
		Start: start,
		End:   DayEnd(start.AddDate(0, 0, 6), loc),
		Label: string(PeriodPreviousWeek),
	}
}

// ResolveWindow turns a period descriptor into an absolute window.
func ResolveWindow(desc PeriodDescriptor, now time.Time, loc *time.Location) (PeriodWindow, error) {
	switch desc.Kind {
	case PeriodYesterday:
		return Yesterday(now, loc), nil
	case PeriodPreviousWeek:
		return Week(now, 1, loc), nil
	case PeriodCurrentWeek:
		return Week(now, 0, loc), nil
	case PeriodCustom:
		if desc.End.Before(desc.Start) {
			return PeriodWindow{}, fmt.Errorf("custom period: end %s before start %s", desc.End, desc.Start)
		}
		return PeriodWindow{Start: desc.Start, End: desc.End, Label: string(PeriodCustom)}, nil
	default:
		return PeriodWindow{}, fmt.Errorf("unknown period kind %q", desc.Kind)
	}
}
