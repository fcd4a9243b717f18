package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"bode-andarilho/agenda/internal/catalog"
	"bode-andarilho/agenda/internal/common"
	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/models/dtos"
	gormModels "bode-andarilho/agenda/internal/models/gorm"
)

const activeEventsTTL = 5 * time.Minute

// DateGroup is one entry of the "events by date" menu.
type DateGroup struct {
	Date    string
	Weekday string
	Count   int
}

type cachedEvents struct {
	Day    string              `json:"day"`
	Events []gormModels.Event `json:"events"`
}

// EventDirectory is the read side over events: upcoming listings, grouping
// by date and filtering by grade. Listings are cached; key resolution always
// reads the store.
type EventDirectory struct {
	events  EventStore
	stats   StatsStore
	cache   common.CacheInterface
	catalog *catalog.Catalog
	metrics *metrics.MetricsRegistry
	loc     *time.Location
	now     func() time.Time
}

func NewEventDirectory(
	events EventStore,
	stats StatsStore,
	cache common.CacheInterface,
	cat *catalog.Catalog,
	metricsReg *metrics.MetricsRegistry,
	loc *time.Location,
) *EventDirectory {
	if loc == nil {
		loc = time.UTC
	}
	return &EventDirectory{
		events:  events,
		stats:   stats,
		cache:   cache,
		catalog: cat,
		metrics: metricsReg,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (d *EventDirectory) SetClock(now func() time.Time) {
	d.now = now
}

// Today is the current calendar day in the configured zone, as stored in
// Event.EventDate.
func (d *EventDirectory) Today() time.Time {
	return CalendarDay(d.now().In(d.loc))
}

// CalendarDay maps a date to UTC midnight of the same calendar day, the
// form Event.EventDate is stored in.
func CalendarDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// Upcoming lists active events from today on, in calendar order.
func (d *EventDirectory) Upcoming(ctx context.Context) ([]gormModels.Event, error) {
	today := d.Today()
	day := today.Format("2006-01-02")
	key := string(constants.CachePrefixActiveEvents)

	if raw, ok := d.cache.Get(key); ok {
		var cached cachedEvents
		if err := json.Unmarshal(raw, &cached); err == nil && cached.Day == day {
			d.metrics.CountCache(key, true)
			return cached.Events, nil
		}
	}
	d.metrics.CountCache(key, false)

	events, err := d.events.ListActive(ctx, today)
	if err != nil {
		return nil, storageErr("list events", err)
	}

	if data, err := json.Marshal(cachedEvents{Day: day, Events: events}); err == nil {
		d.cache.Set(key, data, activeEventsTTL)
	} else {
		logging.Warn("Failed to cache events", "error", err)
	}
	return events, nil
}

// Invalidate drops the cached listing after any event write.
func (d *EventDirectory) Invalidate() {
	d.cache.Delete(string(constants.CachePrefixActiveEvents))
}

// Dates groups upcoming events by date.
func (d *EventDirectory) Dates(ctx context.Context) ([]DateGroup, error) {
	events, err := d.Upcoming(ctx)
	if err != nil {
		return nil, err
	}
	var groups []DateGroup
	index := map[string]int{}
	for _, e := range events {
		i, ok := index[e.Date]
		if !ok {
			index[e.Date] = len(groups)
			groups = append(groups, DateGroup{Date: e.Date, Weekday: e.Weekday})
			i = len(groups) - 1
		}
		groups[i].Count++
	}
	return groups, nil
}

// OnDate lists upcoming events on a dd/mm/yyyy date.
func (d *EventDirectory) OnDate(ctx context.Context, date string) ([]gormModels.Event, error) {
	events, err := d.Upcoming(ctx)
	if err != nil {
		return nil, err
	}
	var out []gormModels.Event
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

// ForGrade lists upcoming events a member of grade may attend, that is
// events whose minimum grade does not exceed it.
func (d *EventDirectory) ForGrade(ctx context.Context, grade string) ([]gormModels.Event, error) {
	events, err := d.Upcoming(ctx)
	if err != nil {
		return nil, err
	}
	var out []gormModels.Event
	for _, e := range events {
		if d.catalog.GradeAdmits(e.MinGrade, grade) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Resolve maps an external event key to the event it names. When several
// events share a key the newest active one wins.
func (d *EventDirectory) Resolve(ctx context.Context, key string) (*gormModels.Event, error) {
	events, err := d.events.FindByKey(ctx, key)
	if err != nil {
		return nil, storageErr("resolve event", err)
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	if len(events) > 1 && events[1].IsActive() {
		logging.Warn("Event key shared by several active events", "event_key", key, "count", len(events))
	}
	return &events[0], nil
}

// Get loads an event by surrogate id.
func (d *EventDirectory) Get(ctx context.Context, id string) (*gormModels.Event, error) {
	e, err := d.events.GetByID(ctx, id)
	return e, storageErr("load event", err)
}

// OwnedBy lists active events a secretary manages; admins see all of them.
func (d *EventDirectory) OwnedBy(ctx context.Context, userID int64, all bool) ([]gormModels.Event, error) {
	owner := userID
	if all {
		owner = 0
	}
	events, err := d.events.ListBySecretary(ctx, owner)
	if err != nil {
		return nil, storageErr("list owned events", err)
	}
	return events, nil
}

// ActiveOn lists active events on a date regardless of the cache, for reminders.
func (d *EventDirectory) ActiveOn(ctx context.Context, date string) ([]gormModels.Event, error) {
	events, err := d.events.ListActiveOn(ctx, date)
	return events, storageErr("list events on date", err)
}

// Headcount returns the attendance split of one event.
func (d *EventDirectory) Headcount(ctx context.Context, eventID string) (dtos.Headcount, error) {
	hc, err := d.stats.Headcount(ctx, eventID)
	return hc, storageErr("headcount", err)
}

// Headcounts returns attendance per event for listing menus.
func (d *EventDirectory) Headcounts(ctx context.Context, events []gormModels.Event) (map[string]dtos.Headcount, error) {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)
	out, err := d.stats.HeadcountsByEvent(ctx, ids)
	return out, storageErr("headcounts", err)
}
