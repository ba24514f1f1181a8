package structured

import (
	"davcal/src-server/ical/utils"
	"davcal/src-server/ical/vocab"
)

// An ATTENDEE value (RFC5545 3.8.4.1) bound to the kind of component it may
// be added to. The participant status vocabulary depends on that kind.
type Attendee struct {
	mail   string
	entity vocab.Entity

	cn            string
	role          string
	partStat      string
	rsvp          *bool
	cuType        string
	member        []string
	delegatedTo   []string
	delegatedFrom []string
	sentBy        string
	dir           string
	language      string

	err error
}

// Create a new attendee for an event or a to-do. Example usage:
//
//	attendee := structured.NewAttendee("attendee@example.com", vocab.EntityEvent).
//	    SetName("Attendee Name").
//	    SetRole(vocab.RoleRequired).
//	    SetParticipantStatus(vocab.PartStatAccepted).
//	    SetRsvp(true)
func NewAttendee(mail string, entity vocab.Entity) *Attendee {
	a := &Attendee{mail: mail, entity: entity}
	switch {
	case utils.IsBlank(mail):
		a.err = utils.InvalidArgument("mail address cannot be empty", nil)
	case !entity.Valid():
		a.err = utils.InvalidArgument("target entity type must be VEVENT or VTODO", map[string]any{"entity": entity})
	}
	return a
}

func (a *Attendee) fail(err error) *Attendee {
	if a.err == nil {
		a.err = err
	}
	return a
}

// Get the kind of component this attendee targets
func (a *Attendee) Entity() vocab.Entity {
	return a.entity
}

// Set the attendee CN
func (a *Attendee) SetName(name string) *Attendee {
	if !utils.IsBlank(name) {
		a.cn = name
	}
	return a
}

// Set the attendee ROLE
func (a *Attendee) SetRole(role string) *Attendee {
	if role == "" {
		return a
	}
	if !vocab.ParticipantRole.Has(role) {
		return a.fail(utils.InvalidArgument("role not in participant role vocabulary", map[string]any{"role": role}))
	}
	a.role = role
	return a
}

// Set the attendee PARTSTAT
func (a *Attendee) SetParticipantStatus(status string) *Attendee {
	if status == "" {
		return a
	}
	set := vocab.ParticipantStatusFor(a.entity)
	if !set.Has(status) {
		return a.fail(utils.InvalidArgument("status not in "+set.Name()+" vocabulary", map[string]any{"status": status}))
	}
	a.partStat = status
	return a
}

// Set the attendee RSVP, rendered as TRUE or FALSE once set
func (a *Attendee) SetRsvp(rsvp bool) *Attendee {
	a.rsvp = &rsvp
	return a
}

// Set the attendee CUTYPE
func (a *Attendee) SetUserType(userType string) *Attendee {
	if userType == "" {
		return a
	}
	if !vocab.CalendarUserType.Has(userType) {
		return a.fail(utils.InvalidArgument("value not in calendar user type vocabulary", map[string]any{"cutype": userType}))
	}
	a.cuType = userType
	return a
}

// Add a group MEMBER
func (a *Attendee) AddGroupMember(mail string) *Attendee {
	if !utils.IsBlank(mail) {
		a.member = append(a.member, utils.NewCalAddress(mail))
	}
	return a
}

// Add a DELEGATED-TO address
func (a *Attendee) AddDelegatedTo(mail string) *Attendee {
	if !utils.IsBlank(mail) {
		a.delegatedTo = append(a.delegatedTo, utils.NewCalAddress(mail))
	}
	return a
}

// Add a DELEGATED-FROM address
func (a *Attendee) AddDelegatedFrom(mail string) *Attendee {
	if !utils.IsBlank(mail) {
		a.delegatedFrom = append(a.delegatedFrom, utils.NewCalAddress(mail))
	}
	return a
}

// Set the attendee SENT-BY
func (a *Attendee) SetSentBy(mail string) *Attendee {
	if !utils.IsBlank(mail) {
		a.sentBy = utils.NewCalAddress(mail)
	}
	return a
}

// Set the attendee DIR, a URI pointing to directory information
func (a *Attendee) SetDirectory(dir string) *Attendee {
	if !utils.IsBlank(dir) {
		a.dir = dir
	}
	return a
}

func (a *Attendee) SetLanguage(language string) *Attendee {
	if !utils.IsBlank(language) {
		a.language = language
	}
	return a
}

func (a *Attendee) Err() error {
	return a.err
}

// Render the calendar address and the parameters that were explicitly set
func (a *Attendee) Render() (string, []utils.Param, error) {
	if a == nil {
		return "", nil, utils.InvalidState("attendee is nil", nil)
	}
	if a.err != nil {
		return "", nil, a.err
	}

	params := make([]utils.Param, 0, 11)
	if a.cn != "" {
		params = append(params, utils.NewParam("CN", a.cn))
	}
	if a.role != "" {
		params = append(params, utils.NewParam("ROLE", a.role))
	}
	if a.partStat != "" {
		params = append(params, utils.NewParam("PARTSTAT", a.partStat))
	}
	if a.rsvp != nil {
		if *a.rsvp {
			params = append(params, utils.NewParam("RSVP", "TRUE"))
		} else {
			params = append(params, utils.NewParam("RSVP", "FALSE"))
		}
	}
	if a.cuType != "" {
		params = append(params, utils.NewParam("CUTYPE", a.cuType))
	}
	if len(a.member) > 0 {
		params = append(params, utils.NewParam("MEMBER", append([]string(nil), a.member...)...))
	}
	if len(a.delegatedTo) > 0 {
		params = append(params, utils.NewParam("DELEGATED-TO", append([]string(nil), a.delegatedTo...)...))
	}
	if len(a.delegatedFrom) > 0 {
		params = append(params, utils.NewParam("DELEGATED-FROM", append([]string(nil), a.delegatedFrom...)...))
	}
	if a.sentBy != "" {
		params = append(params, utils.NewParam("SENT-BY", a.sentBy))
	}
	if a.dir != "" {
		params = append(params, utils.NewParam("DIR", a.dir))
	}
	if a.language != "" {
		params = append(params, utils.NewParam("LANGUAGE", a.language))
	}
	return utils.NewCalAddress(a.mail), params, nil
}
