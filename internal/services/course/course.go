// Package services реализует учебные курсы и выдачу уроков.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// CourseRepository определяет методы хранилища для курсов.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course models.Course, lessons []models.Lesson) (string, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error)
}

// CourseService создание курсов и чтение уроков.
type CourseService struct {
	repo CourseRepository
	log  *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(repo CourseRepository, log *slog.Logger) *CourseService {
	return &CourseService{repo: repo, log: log}
}

// Create создаёт курс с уроками в заданном порядке. Требует доступа к разделу content.
func (s *CourseService) Create(ctx context.Context, actor models.Actor, req models.DummyCourse) (*models.Course, error) {
	const op = "services.CourseService.Create"

	if err := access.Authorize(actor.Role, access.Content); err != nil {
		return nil, err
	}
	if len(req.Lessons) == 0 {
		return nil, apperr.Validation("course must have at least one lesson")
	}
	courseSlug := slug.Make(req.Title)
	if courseSlug == "" {
		return nil, apperr.Validation("course title must contain letters or digits")
	}

	course := models.Course{
		ID:          uuid.NewString(),
		Slug:        courseSlug,
		Title:       req.Title,
		Description: req.Description,
	}
	lessons := make([]models.Lesson, 0, len(req.Lessons))
	for i, l := range req.Lessons {
		lessons = append(lessons, models.Lesson{
			ID:       uuid.NewString(),
			CourseID: course.ID,
			Title:    l.Title,
			Position: i + 1,
			VideoURL: l.VideoURL,
		})
	}

	if _, err := s.repo.CreateCourse(ctx, course, lessons); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("course created", slog.String("slug", course.Slug), slog.Int("lessons", len(lessons)))
	return &course, nil
}

// Lessons возвращает курс и его уроки по slug.
func (s *CourseService) Lessons(ctx context.Context, courseSlug string) (*models.Course, []*models.Lesson, error) {
	const op = "services.CourseService.Lessons"

	course, err := s.repo.GetCourseBySlug(ctx, courseSlug)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	lessons, err := s.repo.ListLessons(ctx, course.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, lessons, nil
}
