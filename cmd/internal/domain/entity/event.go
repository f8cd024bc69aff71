package entity

type Category string

const (
	CategoryITMaintenance  Category = "it-maintenance"
	CategorySoftwareUpdate Category = "software-update"
	CategoryMeeting        Category = "meeting"
	CategoryProject        Category = "project"
)

type EventType string

const (
	TypeMaintenance EventType = "maintenance"
	TypeUpdate      EventType = "update"
	TypeMeeting     EventType = "meeting"
	TypeProject     EventType = "project"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ScheduleEvent is a calendar entry owned by the event store.
// StartTime, EndTime, CreatedAt and UpdatedAt are epoch milliseconds (UTC).
type ScheduleEvent struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	StartTime   int64    `gorm:"not null;index"`
	EndTime     int64    `gorm:"not null;index"`
	AllDay      bool     `gorm:"not null"`
	Organizer   string   `gorm:"index"`
	Attendees   []string `gorm:"serializer:json"`
	Location    string
	Category    Category  `gorm:"not null"`
	Type        EventType `gorm:"not null"`
	Priority    Priority  `gorm:"not null"`
	Status      Status    `gorm:"not null"`
	Notes       string
	CreatedAt   int64 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   int64 `gorm:"not null;autoUpdateTime:false"`
}

// Clone returns a deep copy so callers never share the attendee slice with the store.
func (e *ScheduleEvent) Clone() ScheduleEvent {
	c := *e
	if e.Attendees != nil {
		c.Attendees = append([]string(nil), e.Attendees...)
	}
	return c
}

// Involves reports whether who is the organizer or one of the attendees.
func (e *ScheduleEvent) Involves(who string) bool {
	if e.Organizer == who {
		return true
	}
	for _, a := range e.Attendees {
		if a == who {
			return true
		}
	}
	return false
}
