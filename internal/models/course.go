package models

import "time"

// Course учебный курс.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Lesson урок курса, Position задаёт порядок внутри курса.
type Lesson struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"position"`
	VideoURL string `db:"video_url" json:"video_url"`
}

// DummyCourse тело запроса создания курса вместе с уроками.
type DummyCourse struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"max=5000"`
	Lessons     []DummyLesson `json:"lessons" validate:"required,min=1,dive"`
}

// DummyLesson урок в запросе создания курса.
type DummyLesson struct {
	Title    string `json:"title" validate:"required,max=200"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
}

// Progress отметка прохождения урока пользователем.
type Progress struct {
	UserID      string     `db:"user_id" json:"user_id"`
	LessonID    string     `db:"lesson_id" json:"lesson_id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	Completed   bool       `db:"completed" json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// CourseProgress сводка прохождения курса.
type CourseProgress struct {
	CourseID         string   `json:"course_id"`
	CompletedLessons []string `json:"completed_lessons"`
	TotalLessons     int      `json:"total_lessons"`
	Percent          int      `json:"percent"`
}

// DummyProgress тело запроса отметки урока.
type DummyProgress struct {
	CourseID string `json:"course_id" validate:"required,uuid4"`
	LessonID string `json:"lesson_id" validate:"required,uuid4"`
}
