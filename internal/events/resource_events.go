package events

import "time"

const (
	ResourceMutatedEventName        = "resource.mutated"
	RolePermissionsAppliedEventName = "role.permissions.applied"
)

// ResourceMutatedEvent - успешное создание, изменение или удаление записи ресурса.
type ResourceMutatedEvent struct {
	ActorID    string
	Resource   string
	Action     string
	RecordID   string
	OccurredAt time.Time
}

func (e ResourceMutatedEvent) Name() string {
	return ResourceMutatedEventName
}

// RolePermissionsAppliedEvent - итог сохранения или отзыва прав одной роли.
type RolePermissionsAppliedEvent struct {
	ActorID    string
	Role       string
	Operation  string
	Codes      []string
	Err        string
	OccurredAt time.Time
}

func (e RolePermissionsAppliedEvent) Name() string {
	return RolePermissionsAppliedEventName
}
