package scheduling

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"opsched/cmd/internal/domain/entity"
	"regexp"
	"slices"
	"strings"
	"time"
)

type RejectionCode string

const (
	RejectLinkInactive       RejectionCode = "link-inactive"
	RejectDurationNotOffered RejectionCode = "duration-not-offered"
	RejectDayNotAvailable    RejectionCode = "day-not-available"
	RejectOutsideHours       RejectionCode = "outside-available-hours"
	RejectConflict           RejectionCode = "conflicts-with-existing-event"
)

// RejectionReason is an expected booking outcome, not an error.
type RejectionReason struct {
	Code      RejectionCode
	Message   string
	Conflicts []entity.ScheduleEvent
}

func (r *RejectionReason) String() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// OwnerConflictFinder is the conflict detector restricted to one person's events.
type OwnerConflictFinder interface {
	FindConflictsFor(candidate Range, owner string) ([]entity.ScheduleEvent, error)
}

type LinkDraft struct {
	Name               string
	Owner              string
	OwnerEmail         string
	MeetingType        entity.MeetingType
	DurationOptions    []int
	AvailableDays      []int
	AvailableTimeStart string
	AvailableTimeEnd   string
	BufferTime         int
	Timezone           string
	IsActive           *bool
}

var (
	validate     = validator.New()
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$|^24:00$`)
	slugStrip    = regexp.MustCompile(`[^a-z0-9]+`)
)

// NewSchedulingLink validates and normalizes a draft. Identity fields (ID, Slug,
// URL, timestamps) are left for the link store to assign.
func NewSchedulingLink(d LinkDraft) (entity.SchedulingLink, error) {
	var l entity.SchedulingLink

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return l, invalid("name", "is required")
	}
	owner := strings.TrimSpace(d.Owner)
	if owner == "" {
		return l, invalid("owner", "is required")
	}
	email := strings.TrimSpace(d.OwnerEmail)
	if err := validate.Var(email, "required,email"); err != nil {
		return l, invalid("owner_email", "must be a valid email address")
	}
	if !ValidMeetingType(d.MeetingType) {
		return l, invalid("meeting_type", "unknown meeting type %q", d.MeetingType)
	}

	durations, err := sortedSet(d.DurationOptions, "duration_options", func(v int) bool { return v > 0 })
	if err != nil {
		return l, err
	}
	days, err := sortedSet(d.AvailableDays, "available_days", func(v int) bool { return v >= 0 && v <= 6 })
	if err != nil {
		return l, err
	}

	start, err := ParseClock(d.AvailableTimeStart)
	if err != nil {
		return l, invalid("available_time_start", "%v", err)
	}
	end, err := ParseClock(d.AvailableTimeEnd)
	if err != nil {
		return l, invalid("available_time_end", "%v", err)
	}
	if start >= end {
		return l, invalid("available_time_end", "must be after available_time_start")
	}
	if d.BufferTime < 0 {
		return l, invalid("buffer_time", "must not be negative")
	}

	tz := strings.TrimSpace(d.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return l, invalid("timezone", "unknown time zone %q", tz)
	}

	active := true
	if d.IsActive != nil {
		active = *d.IsActive
	}

	return entity.SchedulingLink{
		Name:               name,
		Owner:              owner,
		OwnerEmail:         email,
		MeetingType:        d.MeetingType,
		DurationOptions:    durations,
		AvailableDays:      days,
		AvailableTimeStart: start,
		AvailableTimeEnd:   end,
		BufferTime:         d.BufferTime,
		Timezone:           tz,
		IsActive:           active,
	}, nil
}

// ValidateBooking runs the link's rules in order and stops at the first failure.
// A nil reason with a nil error means the booking is acceptable.
func ValidateBooking(link *entity.SchedulingLink, proposed Range, conflicts OwnerConflictFinder) (*RejectionReason, error) {
	if proposed.Empty() {
		return nil, invalid("end_time", "must be after start_time")
	}
	loc, err := time.LoadLocation(link.Timezone)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", link.ID, err)
	}

	if !link.IsActive {
		return &RejectionReason{Code: RejectLinkInactive, Message: "link is not active"}, nil
	}

	d := proposed.Duration()
	if d%time.Minute != 0 || !slices.Contains(link.DurationOptions, int(d/time.Minute)) {
		return &RejectionReason{
			Code:    RejectDurationNotOffered,
			Message: fmt.Sprintf("duration of %s is not offered", d),
		}, nil
	}

	start := time.UnixMilli(proposed.Start).In(loc)
	if !slices.Contains(link.AvailableDays, int(start.Weekday())) {
		return &RejectionReason{Code: RejectDayNotAvailable, Message: "day not available"}, nil
	}

	end := time.UnixMilli(proposed.End).In(loc)
	if !withinClock(start, end, link.AvailableTimeStart, link.AvailableTimeEnd) {
		return &RejectionReason{
			Code: RejectOutsideHours,
			Message: fmt.Sprintf("booking must fall between %s and %s",
				FormatClock(link.AvailableTimeStart), FormatClock(link.AvailableTimeEnd)),
		}, nil
	}

	buffered := proposed.Expand(time.Duration(link.BufferTime) * time.Minute)
	found, err := conflicts.FindConflictsFor(buffered, link.Owner)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return &RejectionReason{
			Code:      RejectConflict,
			Message:   fmt.Sprintf("conflicts with %d existing event(s)", len(found)),
			Conflicts: found,
		}, nil
	}
	return nil, nil
}

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is accepted.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !clockPattern.MatchString(s) {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "link"
	}
	return s
}

func LinkURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/book/" + slug
}

// withinClock checks both ends against [openMin, closeMin] on the start's local day,
// to the second. An end exactly at the following midnight counts as 24:00.
func withinClock(start, end time.Time, openMin, closeMin int) bool {
	startSec := secondOfDay(start)
	endSec := secondOfDay(end)
	if civil(end) != civil(start) {
		if endSec != 0 || end.Nanosecond() != 0 || civil(end.AddDate(0, 0, -1)) != civil(start) {
			return false
		}
		endSec = 24 * 60 * 60
	}
	if end.Nanosecond() != 0 {
		endSec++
	}
	return startSec >= openMin*60 && endSec <= closeMin*60
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func sortedSet(in []int, field string, ok func(int) bool) ([]int, error) {
	if len(in) == 0 {
		return nil, invalid(field, "must not be empty")
	}
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !ok(v) {
			return nil, invalid(field, "value %d is out of range", v)
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
