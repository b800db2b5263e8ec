package postgres

import "github.com/orgcore/notification-service/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.NotificationEvent{},
	&entity.InboxEntry{},
}
