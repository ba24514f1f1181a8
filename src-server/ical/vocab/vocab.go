// Package vocab holds the closed vocabularies of RFC5545 and RFC4791 that
// the builders validate against.
package vocab

// An immutable closed set of tokens
type Set struct {
	name    string
	members map[string]struct{}
	ordered []string
}

func newSet(name string, values ...string) Set {
	s := Set{
		name:    name,
		members: make(map[string]struct{}, len(values)),
		ordered: values,
	}
	for _, v := range values {
		s.members[v] = struct{}{}
	}
	return s
}

// Report whether v belongs to the set. Matching is case-sensitive, RFC5545
// tokens are upper-case.
func (s Set) Has(v string) bool {
	_, ok := s.members[v]
	return ok
}

// Get a copy of the members in declaration order
func (s Set) Values() []string {
	return append([]string(nil), s.ordered...)
}

func (s Set) Name() string {
	return s.name
}

// Component kind an attendee or status vocabulary is bound to
type Entity string

const (
	EntityEvent Entity = "VEVENT"
	EntityTodo  Entity = "VTODO"
)

func (e Entity) Valid() bool {
	return e == EntityEvent || e == EntityTodo
}

const (
	StatusTentative   = "TENTATIVE"
	StatusConfirmed   = "CONFIRMED"
	StatusCancelled   = "CANCELLED"
	StatusNeedsAction = "NEEDS-ACTION"
	StatusCompleted   = "COMPLETED"
	StatusInProcess   = "IN-PROCESS"

	TranspOpaque      = "OPAQUE"
	TranspTransparent = "TRANSPARENT"

	ActionAudio   = "AUDIO"
	ActionDisplay = "DISPLAY"
	ActionEmail   = "EMAIL"

	RoleChair          = "CHAIR"
	RoleRequired       = "REQ-PARTICIPANT"
	RoleOptional       = "OPT-PARTICIPANT"
	RoleNonParticipant = "NON-PARTICIPANT"

	PartStatNeedsAction = "NEEDS-ACTION"
	PartStatAccepted    = "ACCEPTED"
	PartStatDeclined    = "DECLINED"
	PartStatTentative   = "TENTATIVE"
	PartStatDelegated   = "DELEGATED"
	PartStatCompleted   = "COMPLETED"
	PartStatInProcess   = "IN-PROCESS"

	CuTypeIndividual = "INDIVIDUAL"
	CuTypeGroup      = "GROUP"
	CuTypeResource   = "RESOURCE"
	CuTypeRoom       = "ROOM"
	CuTypeUnknown    = "UNKNOWN"

	FreqSecondly = "SECONDLY"
	FreqMinutely = "MINUTELY"
	FreqHourly   = "HOURLY"
	FreqDaily    = "DAILY"
	FreqWeekly   = "WEEKLY"
	FreqMonthly  = "MONTHLY"
	FreqYearly   = "YEARLY"

	Sunday    = "SU"
	Monday    = "MO"
	Tuesday   = "TU"
	Wednesday = "WE"
	Thursday  = "TH"
	Friday    = "FR"
	Saturday  = "SA"
)

var (
	EventStatus = newSet("event status", StatusTentative, StatusConfirmed, StatusCancelled)
	TodoStatus  = newSet("todo status", StatusNeedsAction, StatusCompleted, StatusInProcess, StatusCancelled)

	Transparency = newSet("transparency", TranspOpaque, TranspTransparent)
	Action       = newSet("action", ActionAudio, ActionDisplay, ActionEmail)

	ParticipantRole = newSet("participant role", RoleChair, RoleRequired, RoleOptional, RoleNonParticipant)

	ParticipantStatus = newSet("participant status",
		PartStatNeedsAction, PartStatAccepted, PartStatDeclined, PartStatTentative, PartStatDelegated)
	ParticipantStatusTodo = newSet("todo participant status",
		PartStatNeedsAction, PartStatAccepted, PartStatDeclined, PartStatTentative, PartStatDelegated,
		PartStatCompleted, PartStatInProcess)

	CalendarUserType = newSet("calendar user type", CuTypeIndividual, CuTypeGroup, CuTypeResource, CuTypeRoom, CuTypeUnknown)

	Frequency = newSet("frequency", FreqSecondly, FreqMinutely, FreqHourly, FreqDaily, FreqWeekly, FreqMonthly, FreqYearly)
	WeekDay   = newSet("week day", Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday)

	HTTPMethod = newSet("http method",
		"OPTIONS", "GET", "HEAD", "POST", "PUT", "DELETE", "TRACE", "COPY", "MOVE",
		"PROPFIND", "PROPPATCH", "LOCK", "UNLOCK", "REPORT", "ACL")
)

// Get the status vocabulary of a component kind
func StatusFor(e Entity) Set {
	if e == EntityTodo {
		return TodoStatus
	}
	return EventStatus
}

// Get the participant status vocabulary for attendees of a component kind
func ParticipantStatusFor(e Entity) Set {
	if e == EntityTodo {
		return ParticipantStatusTodo
	}
	return ParticipantStatus
}
