package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orgcore/notification-service/internal/domain/common/errorz"
	"github.com/orgcore/notification-service/internal/domain/dto"
	"github.com/orgcore/notification-service/internal/domain/entity"
	"github.com/orgcore/notification-service/pkg/logger/types"
)

type inboxStorage interface {
	ListForUser(ctx context.Context, me *uuid.UUID, roles []string, filter dto.InboxFilter, pageable dto.Pageable) ([]entity.InboxEntry, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, filter dto.InboxFilter, pageable dto.Pageable) ([]entity.InboxEntry, int64, error)
	CountUnreadForUser(ctx context.Context, me *uuid.UUID, roles []string) (int64, error)
	CountUnreadByEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, employeeID uuid.UUID, now time.Time) (int64, error)
	MarkAllReadForUser(ctx context.Context, me *uuid.UUID, roles []string, now time.Time) (int64, error)
	MarkRead(ctx context.Context, inboxID string, owner *uuid.UUID, isAdmin bool, now time.Time) (int64, error)
	SoftDelete(ctx context.Context, inboxID string, owner *uuid.UUID, isAdmin bool, now time.Time) (int64, error)
}

// InboxService is the query and mutation engine over inbox entries.
//
// Two identity models apply: "for user" operations take the caller's own
// identity and role set and match with OR across both; "by employee"
// operations are administrative lookups against one specific identity.
type InboxService struct {
	inboxStorage inboxStorage
	counts       unreadCountCache
	logger       *types.Logger
}

func NewInboxService(inboxStorage inboxStorage, counts unreadCountCache, logger *types.Logger) *InboxService {
	return &InboxService{
		inboxStorage: inboxStorage,
		counts:       counts,
		logger:       logger,
	}
}

// InboxForUser returns the caller's inbox page: entries addressed to them
// personally or to any of their roles, soft-deleted rows excluded.
func (s *InboxService) InboxForUser(ctx context.Context, me *uuid.UUID, roles []string, filter dto.InboxFilter, pageable dto.Pageable) (*dto.InboxPage, error) {
	if me == nil && len(roles) == 0 {
		return nil, errorz.ErrForbidden
	}
	normalized := pageable.Normalized()
	entries, total, err := s.inboxStorage.ListForUser(ctx, me, roles, filter, normalized)
	if err != nil {
		return nil, err
	}
	return dto.NewInboxPage(entries, total, normalized), nil
}

// InboxByEmployee is the administrative lookup of one employee's
// identity-addressed entries.
func (s *InboxService) InboxByEmployee(ctx context.Context, employeeID *uuid.UUID, filter dto.InboxFilter, pageable dto.Pageable) (*dto.InboxPage, error) {
	if employeeID == nil {
		return nil, errorz.ErrInvalidArgument
	}
	normalized := pageable.Normalized()
	entries, total, err := s.inboxStorage.ListByEmployee(ctx, *employeeID, filter, normalized)
	if err != nil {
		return nil, err
	}
	return dto.NewInboxPage(entries, total, normalized), nil
}

// UnreadCountForUser counts non-deleted unread entries matching the
// caller's identity or roles.
func (s *InboxService) UnreadCountForUser(ctx context.Context, me *uuid.UUID, roles []string) (int64, error) {
	if me == nil && len(roles) == 0 {
		return 0, errorz.ErrForbidden
	}
	return s.inboxStorage.CountUnreadForUser(ctx, me, roles)
}

// UnreadCount counts one employee's non-deleted unread entries. The cached
// value is used when fresh; misses and errors fall through to storage.
func (s *InboxService) UnreadCount(ctx context.Context, employeeID *uuid.UUID) (int64, error) {
	if employeeID == nil {
		return 0, errorz.ErrForbidden
	}
	if s.counts != nil {
		if count, err := s.counts.Get(ctx, *employeeID); err == nil {
			return count, nil
		}
	}
	count, err := s.inboxStorage.CountUnreadByEmployee(ctx, *employeeID)
	if err != nil {
		return 0, err
	}
	if s.counts != nil {
		s.counts.Set(ctx, *employeeID, count)
	}
	return count, nil
}

// MarkAllRead marks every unread identity-owned entry of one employee.
// Role-addressed entries are untouched. Zero matched rows is success.
func (s *InboxService) MarkAllRead(ctx context.Context, employeeID *uuid.UUID, now time.Time) error {
	if employeeID == nil {
		return errorz.ErrForbidden
	}
	marked, err := s.inboxStorage.MarkAllRead(ctx, *employeeID, now)
	if err != nil {
		return err
	}
	if marked > 0 {
		s.invalidateCount(ctx, employeeID)
	}
	return nil
}

// MarkAllReadForUser bulk-marks both the identity-owned and the
// role-addressed entries matching the caller. Zero matched rows is success.
func (s *InboxService) MarkAllReadForUser(ctx context.Context, me *uuid.UUID, roles []string, now time.Time) error {
	if me == nil && len(roles) == 0 {
		return errorz.ErrForbidden
	}
	marked, err := s.inboxStorage.MarkAllReadForUser(ctx, me, roles, now)
	if err != nil {
		return err
	}
	if marked > 0 {
		s.invalidateCount(ctx, me)
	}
	return nil
}

// MarkReadSecured marks exactly one entry read. Non-admin callers may only
// touch entries they personally own; re-marking an already-read owned entry
// is a no-op success. ErrNotFound covers missing, soft-deleted and foreign
// rows alike.
func (s *InboxService) MarkReadSecured(ctx context.Context, me *uuid.UUID, inboxID string, isAdmin bool, now time.Time) error {
	if me == nil && !isAdmin {
		return errorz.ErrForbidden
	}
	matched, err := s.inboxStorage.MarkRead(ctx, inboxID, me, isAdmin, now)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errorz.ErrNotFound
	}
	s.invalidateCount(ctx, me)
	return nil
}

// DeleteFromInboxSecured soft-deletes one entry under the same ownership
// rule as MarkReadSecured. A soft-deleted entry is gone for every
// subsequent query and mutation.
func (s *InboxService) DeleteFromInboxSecured(ctx context.Context, me *uuid.UUID, inboxID string, isAdmin bool, now time.Time) error {
	if me == nil && !isAdmin {
		return errorz.ErrForbidden
	}
	matched, err := s.inboxStorage.SoftDelete(ctx, inboxID, me, isAdmin, now)
	if err != nil {
		return err
	}
	if matched == 0 {
		return errorz.ErrNotFound
	}
	s.invalidateCount(ctx, me)
	return nil
}

func (s *InboxService) invalidateCount(ctx context.Context, employeeID *uuid.UUID) {
	if s.counts == nil || employeeID == nil {
		return
	}
	s.counts.Invalidate(ctx, *employeeID)
}
