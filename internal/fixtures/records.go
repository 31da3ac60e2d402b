package fixtures

import "time"

// Document is a record body as stored in a document store.
type Document = map[string]interface{}

// User is a member profile.
type User struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Document() Document {
	return Document{
		"id": u.ID, "groupId": u.GroupID, "name": u.Name,
		"email": u.Email, "role": u.Role, "createdAt": u.CreatedAt.Format(time.RFC3339),
	}
}

// Group is a named set of users owned by one of them.
type Group struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (g Group) Document() Document {
	return Document{
		"id": g.ID, "ownerId": g.OwnerID, "name": g.Name,
		"description": g.Description, "createdAt": g.CreatedAt.Format(time.RFC3339),
	}
}

// Event is a time-boxed meeting inside a group.
type Event struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"groupId"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Location string    `json:"location"`
}

func (e Event) Document() Document {
	return Document{
		"id": e.ID, "groupId": e.GroupID, "title": e.Title,
		"startsAt": e.StartsAt.Format(time.RFC3339), "endsAt": e.EndsAt.Format(time.RFC3339),
		"location": e.Location,
	}
}

// Priorities a task can have, lowest first.
var Priorities = []string{"low", "medium", "high", "urgent"}

// Task is a prioritized work item.
type Task struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

func (t Task) Document() Document {
	return Document{
		"id": t.ID, "parentId": t.ParentID, "title": t.Title,
		"priority": t.Priority, "status": t.Status,
	}
}

// Location is a named place with coordinates.
type Location struct {
	ID        string  `json:"id"`
	ParentID  string  `json:"parentId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Document() Document {
	return Document{
		"id": l.ID, "parentId": l.ParentID, "name": l.Name,
		"latitude": l.Latitude, "longitude": l.Longitude,
	}
}

// MoodLog is a self-reported mood on a topic. Mood ranges from 1 to 5.
type MoodLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Mood     int       `json:"mood"`
	Topic    string    `json:"topic"`
	Note     string    `json:"note"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (m MoodLog) Document() Document {
	return Document{
		"id": m.ID, "userId": m.UserID, "mood": m.Mood,
		"topic": m.Topic, "note": m.Note, "loggedAt": m.LoggedAt.Format(time.RFC3339),
	}
}
