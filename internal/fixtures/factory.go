package fixtures

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"hans/internal/sim"
)

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis", "Frances"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie", "Allen"}
	groupNames = []string{"Platform", "Mobile", "Design", "Support", "Research", "Growth"}
	eventNames = []string{"Standup", "Retro", "Planning", "Demo", "1:1", "Offsite"}
	taskVerbs  = []string{"Fix", "Write", "Review", "Ship", "Refactor", "Test"}
	taskNouns  = []string{"login flow", "sync engine", "release notes", "dashboard", "onboarding", "API docs"}
	places     = []string{"HQ", "Berlin office", "Lisbon hub", "Remote", "Café Central", "Lab 3"}
	topics     = []string{"work", "health", "team", "family", "sleep", "focus"}
	statuses   = []string{"todo", "in_progress", "done"}
	roles      = []string{"admin", "member", "viewer"}
)

// Option configures a Factory.
type Option func(*Factory)

// WithClock sets the clock used for generated timestamps.
func WithClock(c sim.Clock) Option {
	return func(f *Factory) { f.clock = c }
}

// WithRand sets the random source for generated content.
func WithRand(r sim.Rand) Option {
	return func(f *Factory) { f.rnd = r }
}

// Factory generates fixture records. It is safe for concurrent use.
type Factory struct {
	clock sim.Clock
	rnd   sim.Rand

	mu      sync.Mutex
	counter int
}

// NewFactory creates a Factory whose counter starts at zero.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		clock: sim.RealClock{},
		rnd:   sim.NewRand(uint64(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) nextID(prefix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	return fmt.Sprintf("%s_%d", prefix, f.counter)
}

// Counter returns the last id number handed out.
func (f *Factory) Counter() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counter
}

// Reset sets the id counter back to zero.
func (f *Factory) Reset() {
	f.mu.Lock()
	f.counter = 0
	f.mu.Unlock()
}

// GenerateUsers creates count users in groupID.
func (f *Factory) GenerateUsers(groupID string, count int) []User {
	out := make([]User, 0, max(count, 0))
	for i := 0; i < count; i++ {
		first, last := sim.Pick(f.rnd, firstNames), sim.Pick(f.rnd, lastNames)
		id := f.nextID("user")
		out = append(out, User{
			ID:        id,
			GroupID:   groupID,
			Name:      first + " " + last,
			Email:     strings.ToLower(fmt.Sprintf("%s.%s+%s@example.com", first, last, id)),
			Role:      sim.Pick(f.rnd, roles),
			CreatedAt: f.clock.Now(),
		})
	}
	return out
}

// GenerateGroups creates count groups owned by ownerID.
func (f *Factory) GenerateGroups(ownerID string, count int) []Group {
	out := make([]Group, 0, max(count, 0))
	for i := 0; i < count; i++ {
		name := sim.Pick(f.rnd, groupNames)
		out = append(out, Group{
			ID:          f.nextID("group"),
			OwnerID:     ownerID,
			Name:        name,
			Description: fmt.Sprintf("The %s team", name),
			CreatedAt:   f.clock.Now(),
		})
	}
	return out
}

// GenerateEvents creates count events in groupID. Events start within the
// next two weeks and last 30 to 120 minutes.
func (f *Factory) GenerateEvents(groupID string, count int) []Event {
	out := make([]Event, 0, max(count, 0))
	now := f.clock.Now()
	for i := 0; i < count; i++ {
		start := now.Add(time.Duration(1+f.rnd.IntN(14*24)) * time.Hour)
		length := time.Duration(30+f.rnd.IntN(91)) * time.Minute
		out = append(out, Event{
			ID:       f.nextID("event"),
			GroupID:  groupID,
			Title:    sim.Pick(f.rnd, eventNames),
			StartsAt: start,
			EndsAt:   start.Add(length),
			Location: sim.Pick(f.rnd, places),
		})
	}
	return out
}

// GenerateTasks creates count tasks under parentID.
func (f *Factory) GenerateTasks(parentID string, count int) []Task {
	out := make([]Task, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, Task{
			ID:       f.nextID("task"),
			ParentID: parentID,
			Title:    sim.Pick(f.rnd, taskVerbs) + " " + sim.Pick(f.rnd, taskNouns),
			Priority: sim.Pick(f.rnd, Priorities),
			Status:   sim.Pick(f.rnd, statuses),
		})
	}
	return out
}

// GenerateLocations creates count locations under parentID.
func (f *Factory) GenerateLocations(parentID string, count int) []Location {
	out := make([]Location, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, Location{
			ID:        f.nextID("location"),
			ParentID:  parentID,
			Name:      sim.Pick(f.rnd, places),
			Latitude:  sim.Between(f.rnd, -90, 90),
			Longitude: sim.Between(f.rnd, -180, 180),
		})
	}
	return out
}

// GenerateMoodLogs creates count mood logs for userID over the last count
// days, one per day.
func (f *Factory) GenerateMoodLogs(userID string, count int) []MoodLog {
	out := make([]MoodLog, 0, max(count, 0))
	now := f.clock.Now()
	for i := 0; i < count; i++ {
		topic := sim.Pick(f.rnd, topics)
		mood := 1 + f.rnd.IntN(5)
		out = append(out, MoodLog{
			ID:       f.nextID("mood"),
			UserID:   userID,
			Mood:     mood,
			Topic:    topic,
			Note:     fmt.Sprintf("Feeling %d/5 about %s", mood, topic),
			LoggedAt: now.Add(-time.Duration(count-i) * 24 * time.Hour),
		})
	}
	return out
}
