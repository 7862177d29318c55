package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// CommentService handles task comments. Comments follow the project's view
// rule; editing and deleting also require the author or an admin.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	policy      *access.Policy
	log         logrus.FieldLogger
	now         Clock
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, policy *access.Policy, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		policy:      policy,
		log:         log,
		now:         systemClock,
	}
}

// WithClock replaces the service clock.
func (s *CommentService) WithClock(now Clock) *CommentService {
	s.now = now
	return s
}

// AddComment posts a comment on a task the caller can view.
func (s *CommentService) AddComment(ctx context.Context, caller access.Caller, taskID uint64, text string) (*models.Comment, error) {
	task, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, taskID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}

	comment := &models.Comment{
		TaskID:    task.ID,
		UserID:    caller.UserID,
		Text:      text,
		CreatedAt: s.now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// ListComments returns the live comments of a task, oldest first.
func (s *CommentService) ListComments(ctx context.Context, caller access.Caller, taskID uint64) ([]models.Comment, error) {
	task, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// EditComment replaces the text of a comment.
func (s *CommentService) EditComment(ctx context.Context, caller access.Caller, commentID uint64, text string) (*models.Comment, error) {
	comment, err := s.findOwnComment(ctx, caller, commentID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}

	at := s.now()
	if err := s.commentRepo.UpdateText(ctx, comment.ID, text, at); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	comment.Text = text
	comment.UpdatedAt = &at
	return comment, nil
}

// DeleteComment soft-deletes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, caller access.Caller, commentID uint64) error {
	comment, err := s.findOwnComment(ctx, caller, commentID)
	if err != nil {
		return err
	}

	if err := s.commentRepo.SoftDelete(ctx, comment.ID, s.now()); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"task_id":  comment.TaskID,
		"user_id":  comment.UserID,
		"actor_id": caller.UserID,
	}).Info("comment deleted")

	return nil
}

// findOwnComment loads a live comment on a visible task that the caller
// wrote, or any such comment for an admin.
func (s *CommentService) findOwnComment(ctx context.Context, caller access.Caller, commentID uint64) (*models.Comment, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if comment.IsDeleted {
		return nil, ErrCommentNotFound
	}

	if _, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, comment.TaskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.UserID != caller.UserID && !caller.IsAdmin {
		return nil, ErrCommentForbidden
	}
	return comment, nil
}
