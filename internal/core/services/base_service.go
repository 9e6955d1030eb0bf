package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/middleware"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultConflictMaxRetries = 3
	defaultRetryInitial       = 10 * time.Millisecond
	defaultRetryMaxInterval   = 250 * time.Millisecond
)

// BaseService provides common functionality for all services
type BaseService struct {
	Membership         portsrepo.MembershipReader
	Events             portssvc.LedgerEventRecorder
	ConflictMaxRetries int
	Now                func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// record hands an event to the recorder, if one is configured.
func (s *BaseService) record(ctx context.Context, event domain.LedgerEvent) {
	if s.Events != nil {
		s.Events.Record(ctx, event)
	}
}

// ensureUserExists reports ErrNotFound for unknown users. Without a membership reader every user exists.
func (s *BaseService) ensureUserExists(ctx context.Context, userID int64) error {
	if s.Membership == nil {
		return nil
	}
	exists, err := s.Membership.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("%w: user %d", apperrors.ErrNotFound, userID)
	}
	return nil
}

// AuthorizeGroupMember checks that userID belongs to groupID.
func (s *BaseService) AuthorizeGroupMember(ctx context.Context, groupID, userID int64) error {
	if s.Membership == nil {
		s.LogDebug(ctx, "No membership reader configured, group access granted by default",
			slog.Int64("group_id", groupID),
			slog.Int64("user_id", userID))
		return nil
	}
	exists, err := s.Membership.GroupExists(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to check group %d: %w", groupID, err)
	}
	if !exists {
		return fmt.Errorf("%w: group %d", apperrors.ErrNotFound, groupID)
	}
	member, err := s.Membership.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership of user %d in group %d: %w", userID, groupID, err)
	}
	if !member {
		return fmt.Errorf("%w: user %d is not a member of group %d", apperrors.ErrForbidden, userID, groupID)
	}
	return nil
}

// withConflictRetry runs fn again while it fails with apperrors.ErrConflict, up to
// ConflictMaxRetries extra attempts. Any other error stops immediately.
func (s *BaseService) withConflictRetry(ctx context.Context, operation string, fn func() error) error {
	maxRetries := s.ConflictMaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultConflictMaxRetries
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = defaultRetryInitial
	eb.MaxInterval = defaultRetryMaxInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if !apperrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		s.LogDebug(ctx, "Conflict while updating balances, retrying",
			slog.String("operation", operation),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return err
	}, policy)

	if err != nil && apperrors.IsRetryable(err) {
		s.LogError(ctx, err, "Giving up after repeated conflicts",
			slog.String("operation", operation),
			slog.Int("attempts", attempt))
	}
	return err
}
