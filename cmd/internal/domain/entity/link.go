package entity

type MeetingType string

const (
	MeetingOneOnOne MeetingType = "one-on-one"
	MeetingGroup    MeetingType = "group"
	MeetingWebinar  MeetingType = "webinar"
)

// SchedulingLink is a bookable availability template.
// AvailableTimeStart/End are minutes since midnight in Timezone.
type SchedulingLink struct {
	ID                 string      `gorm:"primaryKey"`
	Name               string      `gorm:"not null"`
	Slug               string      `gorm:"not null;uniqueIndex"`
	Owner              string      `gorm:"not null;index"`
	OwnerEmail         string      `gorm:"not null"`
	URL                string      `gorm:"not null"`
	MeetingType        MeetingType `gorm:"not null"`
	DurationOptions    []int       `gorm:"serializer:json"`
	AvailableDays      []int       `gorm:"serializer:json"`
	AvailableTimeStart int         `gorm:"not null"`
	AvailableTimeEnd   int         `gorm:"not null"`
	BufferTime         int         `gorm:"not null"`
	Timezone           string      `gorm:"not null"`
	IsActive           bool        `gorm:"not null"`
	CreatedAt          int64       `gorm:"not null;autoCreateTime:false"`
	UpdatedAt          int64       `gorm:"not null;autoUpdateTime:false"`
}

func (l *SchedulingLink) Clone() SchedulingLink {
	c := *l
	c.DurationOptions = append([]int(nil), l.DurationOptions...)
	c.AvailableDays = append([]int(nil), l.AvailableDays...)
	return c
}
