// Package queue defines message payloads exchanged over the message broker
// and the background consumer turning them into the activity log.
package queue

// Queue names. One durable queue per event kind.
const (
	QueueUserRegistered = "user.registered"
	QueueCourseCreated  = "course.created"
)

// UserRegisteredEvent is published after a successful registration. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// CourseCreatedEvent is published after a course is created.
type CourseCreatedEvent struct {
	EventID      string `json:"event_id"`
	CourseID     uint64 `json:"course_id"`
	Title        string `json:"title"`
	CategoryName string `json:"category_name"`
	AuthorID     uint64 `json:"author_id"`
	CreatedAt    string `json:"created_at"`
}
