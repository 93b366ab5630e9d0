// Package services реализует учёт прохождения уроков.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// ProgressRepository определяет методы хранилища для прогресса.
type ProgressRepository interface {
	MarkLessonCompleted(ctx context.Context, p models.Progress, at time.Time) error
	ListCompletedLessons(ctx context.Context, userID, courseID string) ([]string, error)
	CountLessons(ctx context.Context, courseID string) (int, error)
}

// ProgressService отмечает пройденные уроки и считает прогресс по курсу.
type ProgressService struct {
	repo ProgressRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewProgressService создает новый экземпляр ProgressService.
func NewProgressService(repo ProgressRepository, log *slog.Logger) *ProgressService {
	return &ProgressService{repo: repo, log: log, now: time.Now}
}

// Complete отмечает урок пройденным. Повторный вызов ничего не меняет.
func (s *ProgressService) Complete(ctx context.Context, userID string, req models.DummyProgress) error {
	const op = "services.ProgressService.Complete"
	p := models.Progress{
		UserID:    userID,
		LessonID:  req.LessonID,
		CourseID:  req.CourseID,
		Completed: true,
	}
	if err := s.repo.MarkLessonCompleted(ctx, p, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Course возвращает пройденные уроки курса и процент прохождения.
func (s *ProgressService) Course(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	const op = "services.ProgressService.Course"

	total, err := s.repo.CountLessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if total == 0 {
		return nil, apperr.NotFound("course not found")
	}
	done, err := s.repo.ListCompletedLessons(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.CourseProgress{
		CourseID:         courseID,
		CompletedLessons: done,
		TotalLessons:     total,
		Percent:          len(done) * 100 / total,
	}, nil
}
