package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orgcore/notification-service/internal/domain/dto"
	"github.com/orgcore/notification-service/internal/domain/entity"
)

type InboxStorage struct {
	db *gorm.DB
}

func NewInboxStorage(db *gorm.DB) *InboxStorage {
	return &InboxStorage{
		db: db,
	}
}

// CreateIfAbsent inserts an inbox entry unless the (event, recipient) pair
// already exists. Reports false, nil on a duplicate so redelivered messages
// fan out idempotently.
func (s *InboxStorage) CreateIfAbsent(ctx context.Context, entry *entity.InboxEntry) (bool, error) {
	err := s.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns a page of non-deleted entries addressed to the caller
// personally or to one of their roles, newest delivery first by default.
func (s *InboxStorage) ListForUser(ctx context.Context, me *uuid.UUID, roles []string, filter dto.InboxFilter, pageable dto.Pageable) ([]entity.InboxEntry, int64, error) {
	query := s.userScope(s.listQuery(ctx, filter), me, roles)
	return s.page(query, pageable)
}

// ListByEmployee returns a page of one employee's identity-addressed,
// non-deleted entries.
func (s *InboxStorage) ListByEmployee(ctx context.Context, employeeID uuid.UUID, filter dto.InboxFilter, pageable dto.Pageable) ([]entity.InboxEntry, int64, error) {
	query := s.listQuery(ctx, filter).
		Where("notification_inbox.recipient_employee_id = ?", employeeID.String())
	return s.page(query, pageable)
}

func (s *InboxStorage) CountUnreadForUser(ctx context.Context, me *uuid.UUID, roles []string) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("notification_inbox.deleted_at IS NULL AND notification_inbox.read_at IS NULL")
	err := s.userScope(query, me, roles).Count(&count).Error
	return count, err
}

func (s *InboxStorage) CountUnreadByEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("recipient_employee_id = ? AND deleted_at IS NULL AND read_at IS NULL", employeeID.String()).
		Count(&count).Error
	return count, err
}

// MarkAllRead marks every unread identity-owned entry of one employee in a
// single update statement to avoid read-modify-write races.
func (s *InboxStorage) MarkAllRead(ctx context.Context, employeeID uuid.UUID, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("recipient_employee_id = ? AND deleted_at IS NULL AND read_at IS NULL", employeeID.String()).
		Update("read_at", now)
	return res.RowsAffected, res.Error
}

// MarkAllReadForUser bulk-marks both the identity-owned and role-addressed
// unread entries matching the caller, again as one statement.
func (s *InboxStorage) MarkAllReadForUser(ctx context.Context, me *uuid.UUID, roles []string, now time.Time) (int64, error) {
	query := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("deleted_at IS NULL AND read_at IS NULL")
	res := s.userScope(query, me, roles).Update("read_at", now)
	return res.RowsAffected, res.Error
}

// MarkRead marks one entry read. Non-admin callers only match entries they
// personally own. COALESCE keeps read_at monotonic: an already-read entry
// still counts as matched but its timestamp is not rewritten.
func (s *InboxStorage) MarkRead(ctx context.Context, inboxID string, owner *uuid.UUID, isAdmin bool, now time.Time) (int64, error) {
	query := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("id = ? AND deleted_at IS NULL", inboxID)
	if !isAdmin {
		query = query.Where("recipient_employee_id = ?", owner.String())
	}
	res := query.Update("read_at", gorm.Expr("COALESCE(read_at, ?)", now))
	return res.RowsAffected, res.Error
}

// SoftDelete sets deleted_at on one entry under the same ownership rule as
// MarkRead. A second delete matches zero rows.
func (s *InboxStorage) SoftDelete(ctx context.Context, inboxID string, owner *uuid.UUID, isAdmin bool, now time.Time) (int64, error) {
	query := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Where("id = ? AND deleted_at IS NULL", inboxID)
	if !isAdmin {
		query = query.Where("recipient_employee_id = ?", owner.String())
	}
	res := query.Update("deleted_at", now)
	return res.RowsAffected, res.Error
}

// listQuery joins the owning event and applies the common filters.
func (s *InboxStorage) listQuery(ctx context.Context, filter dto.InboxFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&entity.InboxEntry{}).
		Joins("Event").
		Where("notification_inbox.deleted_at IS NULL")
	if filter.UnreadOnly {
		query = query.Where("notification_inbox.read_at IS NULL")
	}
	if filter.Source != "" {
		query = query.Where(`"Event".source = ?`, filter.Source)
	}
	if filter.EventType != "" {
		query = query.Where(`"Event".event_type = ?`, filter.EventType)
	}
	if filter.From != nil {
		query = query.Where("notification_inbox.delivered_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("notification_inbox.delivered_at <= ?", filter.To)
	}
	return query
}

// userScope matches entries addressed to the identity OR to any of the
// roles. Callers guarantee at least one of the two is present.
func (s *InboxStorage) userScope(query *gorm.DB, me *uuid.UUID, roles []string) *gorm.DB {
	switch {
	case me != nil && len(roles) > 0:
		return query.Where("notification_inbox.recipient_employee_id = ? OR notification_inbox.recipient_role IN ?", me.String(), roles)
	case me != nil:
		return query.Where("notification_inbox.recipient_employee_id = ?", me.String())
	default:
		return query.Where("notification_inbox.recipient_role IN ?", roles)
	}
}

func (s *InboxStorage) page(query *gorm.DB, pageable dto.Pageable) ([]entity.InboxEntry, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []entity.InboxEntry
	err := query.
		Order("notification_inbox." + pageable.Order()).
		Offset(pageable.Offset()).
		Limit(pageable.Size).
		Find(&entries).Error
	return entries, total, err
}
