package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLeadCreated   EventType = "lead.created"
	EventLeadUpdated   EventType = "lead.updated"
	EventLeadMoved     EventType = "lead.moved"
	EventLeadDeleted   EventType = "lead.deleted"
	EventLeadConverted EventType = "lead.converted"

	EventClientUpdated EventType = "client.updated"
	EventClientDeleted EventType = "client.deleted"

	EventTaskCreated       EventType = "task.created"
	EventTaskUpdated       EventType = "task.updated"
	EventTaskStatusChanged EventType = "task.status_changed"
	EventTaskDeleted       EventType = "task.deleted"

	EventUserCreated          EventType = "user.created"
	EventUserUpdated          EventType = "user.updated"
	EventUserRoleChanged      EventType = "user.role_changed"
	EventUserStatusChanged    EventType = "user.status_changed"
	EventUserPasswordReset    EventType = "user.password_reset"
	EventUserTwoFactorChanged EventType = "user.two_factor_changed"
	EventUserDeleted          EventType = "user.deleted"
)

// Event is emitted after a successful mutation. The type doubles as the
// message id of the user-facing notice; Payload fills its placeholders.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	ActorID    string            `json:"actorId"`
	SubjectID  string            `json:"subjectId"`
	Payload    map[string]string `json:"payload,omitempty"`
}

func NewEvent(typ EventType, actorID, subjectID string, payload map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		SubjectID:  subjectID,
		Payload:    payload,
	}
}

// ViewPermission is what a caller must hold to see an event of this type.
// Unknown families need view_activity_log.
func (t EventType) ViewPermission() Permission {
	family, _, _ := strings.Cut(string(t), ".")
	switch family {
	case "lead":
		return PermViewLeads
	case "client":
		return PermViewClients
	case "task":
		return PermViewTasks
	case "user":
		return PermViewUsers
	}
	return PermViewActivityLog
}
