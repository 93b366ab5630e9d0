package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// CreateCourse сохраняет курс вместе с уроками в одной транзакции.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course, lessons []models.Lesson) (string, error) {
	const op = "storage.CreateCourse"
	err := s.InTx(ctx, func(ctx context.Context) error {
		_, err := s.conn(ctx).ExecContext(ctx,
			`INSERT INTO courses (id, slug, title, description) VALUES ($1, $2, $3, $4)`,
			course.ID, course.Slug, course.Title, course.Description)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Validation("course %q already exists", course.Slug)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		for _, l := range lessons {
			_, err = s.conn(ctx).ExecContext(ctx,
				`INSERT INTO lessons (id, course_id, title, position, video_url) VALUES ($1, $2, $3, $4, $5)`,
				l.ID, course.ID, l.Title, l.Position, l.VideoURL)
			if err != nil {
				return fmt.Errorf("%s: lesson %d: %w", op, l.Position, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return course.ID, nil
}

// GetCourseBySlug возвращает курс по slug.
func (s *Storage) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	const op = "storage.GetCourseBySlug"
	var c models.Course
	err := s.x.GetContext(ctx, &c, `SELECT id, slug, title, description, created_at FROM courses WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// ListLessons возвращает уроки курса по порядку.
func (s *Storage) ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	lessons := []*models.Lesson{}
	err := s.x.SelectContext(ctx, &lessons,
		`SELECT id, course_id, title, position, video_url FROM lessons WHERE course_id = $1 ORDER BY position`, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lessons, nil
}

// CountLessons возвращает число уроков курса.
func (s *Storage) CountLessons(ctx context.Context, courseID string) (int, error) {
	const op = "storage.CountLessons"
	var n int
	if err := s.x.GetContext(ctx, &n, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkLessonCompleted отмечает урок пройденным. Повторная отметка не меняет дату прохождения.
func (s *Storage) MarkLessonCompleted(ctx context.Context, p models.Progress, at time.Time) error {
	const op = "storage.MarkLessonCompleted"
	res, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO progress (user_id, lesson_id, course_id, completed, completed_at)
		 SELECT $1, l.id, l.course_id, true, $4
		 FROM lessons l WHERE l.id = $2 AND l.course_id = $3
		 ON CONFLICT (user_id, lesson_id) DO UPDATE
		 SET completed = true, completed_at = COALESCE(progress.completed_at, EXCLUDED.completed_at)`,
		p.UserID, p.LessonID, p.CourseID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(res, op, "lesson not found")
}

// ListCompletedLessons возвращает ID пройденных уроков курса.
func (s *Storage) ListCompletedLessons(ctx context.Context, userID, courseID string) ([]string, error) {
	const op = "storage.ListCompletedLessons"
	ids := []string{}
	err := s.x.SelectContext(ctx, &ids,
		`SELECT pr.lesson_id FROM progress pr
		 JOIN lessons l ON l.id = pr.lesson_id
		 WHERE pr.user_id = $1 AND pr.course_id = $2 AND pr.completed
		 ORDER BY l.position`, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
