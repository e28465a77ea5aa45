package model

import "time"

// Course mirrors the `course` table. Both foreign keys must reference
// existing rows at creation time; deleting a user cascades to the courses
// they authored.
type Course struct {
	ID          uint64    // course.id
	Title       string    // course.title
	Description string    // course.description
	VideoID     string    // course.video_id
	CreatedDate time.Time // course.created_date (UTC)
	CategoryID  uint64    // course.category_id (FK category.id)
	AuthorID    uint64    // course.author_id (FK user.id)
}

// Category mirrors the `category` table. Courses reference categories by
// id, but the create-course API accepts the category name and resolves it
// server side.
type Category struct {
	ID   uint64 // category.id
	Name string // category.name
}
