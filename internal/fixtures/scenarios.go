package fixtures

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"time"
)

// Scenario names.
const (
	ScenarioConcurrentEditing = "concurrent_editing"
	ScenarioPermissionTesting = "permission_testing"
	ScenarioRealtimeSync      = "realtime_sync"
)

// ErrUnknownScenario is returned for names without a builder.
var ErrUnknownScenario = errors.New("unknown scenario")

// Action is what an Operation does to its path.
type Action string

const (
	ActionRead      Action = "read"
	ActionSet       Action = "set"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionSubscribe Action = "subscribe"
)

// Actor is a participant in a scenario.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Operation is one scripted step performed by an actor.
type Operation struct {
	Actor  string        `json:"actor"`
	Action Action        `json:"action"`
	Path   string        `json:"path"`
	Data   Document      `json:"data,omitempty"`
	Delay  time.Duration `json:"delay"`
	// Denied marks operations the actor's role must not be allowed to do.
	Denied bool `json:"denied,omitempty"`
}

// Scenario is a seeded world plus a script of operations against it.
type Scenario struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Actors      []Actor             `json:"actors"`
	Documents   map[string]Document `json:"documents"`
	Operations  []Operation         `json:"operations"`
}

// Paths returns the seeded document paths in sorted order.
func (s Scenario) Paths() []string {
	paths := make([]string, 0, len(s.Documents))
	for p := range s.Documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Target returns the path most operations in the scenario act on.
func (s Scenario) Target() string {
	counts := map[string]int{}
	best := ""
	for _, op := range s.Operations {
		counts[op.Path]++
		if counts[op.Path] > counts[best] || (counts[op.Path] == counts[best] && op.Path < best) {
			best = op.Path
		}
	}
	return best
}

// Seeder writes documents without network simulation.
type Seeder interface {
	Seed(docs map[string]map[string]interface{}) error
}

// SeedBackend writes every document of s into store.
func SeedBackend(s Scenario, store Seeder) error {
	if err := store.Seed(s.Documents); err != nil {
		return fmt.Errorf("seeding scenario %s: %w", s.Name, err)
	}
	return nil
}

var scenarioBuilders = map[string]func(*Factory) Scenario{
	ScenarioConcurrentEditing: (*Factory).concurrentEditing,
	ScenarioPermissionTesting: (*Factory).permissionTesting,
	ScenarioRealtimeSync:      (*Factory).realtimeSync,
}

// ScenarioNames lists the pre-built scenarios in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarioBuilders))
	for n := range scenarioBuilders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasScenario reports whether name is a pre-built scenario.
func HasScenario(name string) bool {
	_, ok := scenarioBuilders[name]
	return ok
}

// Scenario builds a fresh instance of the named scenario.
func (f *Factory) Scenario(name string) (Scenario, error) {
	build, ok := scenarioBuilders[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return build(f), nil
}

func actorsFrom(users []User) []Actor {
	actors := make([]Actor, len(users))
	for i, u := range users {
		actors[i] = Actor{ID: u.ID, Name: u.Name, Role: u.Role}
	}
	return actors
}

func (f *Factory) world(groupUsers int) (Group, []User, map[string]Document) {
	group := f.GenerateGroups("", 1)[0]
	users := f.GenerateUsers(group.ID, groupUsers)
	group.OwnerID = users[0].ID

	docs := map[string]Document{
		path.Join("groups", group.ID): group.Document(),
	}
	for _, u := range users {
		docs[path.Join("users", u.ID)] = u.Document()
	}
	return group, users, docs
}

// concurrentEditing has three editors writing the same task 50ms apart.
func (f *Factory) concurrentEditing() Scenario {
	group, users, docs := f.world(3)
	task := f.GenerateTasks(group.ID, 1)[0]
	target := path.Join("groups", group.ID, "tasks", task.ID)
	docs[target] = task.Document()

	ops := make([]Operation, 0, len(users)+1)
	for i, u := range users {
		ops = append(ops, Operation{
			Actor:  u.ID,
			Action: ActionUpdate,
			Path:   target,
			Data:   Document{"title": fmt.Sprintf("%s (edited by %s)", task.Title, u.Name), "editedBy": u.ID},
			Delay:  time.Duration(i) * 50 * time.Millisecond,
		})
	}
	ops = append(ops, Operation{Actor: users[0].ID, Action: ActionRead, Path: target, Delay: 200 * time.Millisecond})

	return Scenario{
		Name:        ScenarioConcurrentEditing,
		Description: "Several members edit the same task at nearly the same time; the last write wins",
		Actors:      actorsFrom(users),
		Documents:   docs,
		Operations:  ops,
	}
}

// permissionTesting gives each role one write and expects the viewer's to be
// denied.
func (f *Factory) permissionTesting() Scenario {
	group, users, docs := f.world(3)
	for i, role := range []string{"admin", "member", "viewer"} {
		users[i].Role = role
		docs[path.Join("users", users[i].ID)] = users[i].Document()
	}
	events := f.GenerateEvents(group.ID, 2)
	for _, e := range events {
		docs[path.Join("groups", group.ID, "events", e.ID)] = e.Document()
	}
	target := path.Join("groups", group.ID, "events", events[0].ID)

	ops := []Operation{
		{Actor: users[0].ID, Action: ActionUpdate, Path: target, Data: Document{"title": "Rescheduled"}},
		{Actor: users[1].ID, Action: ActionUpdate, Path: target, Data: Document{"location": "Remote"}},
		{Actor: users[2].ID, Action: ActionUpdate, Path: target, Data: Document{"title": "Hijacked"}, Denied: true},
		{Actor: users[2].ID, Action: ActionRead, Path: target},
		{Actor: users[2].ID, Action: ActionDelete, Path: path.Join("groups", group.ID, "events", events[1].ID), Denied: true},
	}

	return Scenario{
		Name:        ScenarioPermissionTesting,
		Description: "Admin, member and viewer act on shared events; viewer writes are denied",
		Actors:      actorsFrom(users),
		Documents:   docs,
		Operations:  ops,
	}
}

// realtimeSync has one member subscribed to mood logs another member writes.
func (f *Factory) realtimeSync() Scenario {
	group, users, docs := f.world(2)
	logs := f.GenerateMoodLogs(users[1].ID, 3)
	for _, l := range logs {
		docs[path.Join("users", users[1].ID, "moods", l.ID)] = l.Document()
	}
	locations := f.GenerateLocations(group.ID, 2)
	for _, l := range locations {
		docs[path.Join("groups", group.ID, "locations", l.ID)] = l.Document()
	}
	target := path.Join("users", users[1].ID, "moods", logs[len(logs)-1].ID)

	ops := []Operation{
		{Actor: users[0].ID, Action: ActionSubscribe, Path: target},
		{Actor: users[1].ID, Action: ActionUpdate, Path: target, Data: Document{"mood": 5, "note": "Shipped it"}, Delay: 100 * time.Millisecond},
		{Actor: users[1].ID, Action: ActionUpdate, Path: target, Data: Document{"mood": 4}, Delay: 200 * time.Millisecond},
		{Actor: users[0].ID, Action: ActionRead, Path: target, Delay: 300 * time.Millisecond},
	}

	return Scenario{
		Name:        ScenarioRealtimeSync,
		Description: "One member watches a mood log while another updates it",
		Actors:      actorsFrom(users),
		Documents:   docs,
		Operations:  ops,
	}
}
