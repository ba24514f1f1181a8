package structured

import (
	"davcal/src-server/ical/utils"
)

// An ORGANIZER value (RFC5545 3.8.4.3)
type Organizer struct {
	mail     string
	cn       string
	sentBy   string
	dir      string
	language string

	err error
}

func NewOrganizer(mail string) *Organizer {
	o := &Organizer{mail: mail}
	if utils.IsBlank(mail) {
		o.err = utils.InvalidArgument("mail address cannot be empty", nil)
	}
	return o
}

func (o *Organizer) SetName(name string) *Organizer {
	if !utils.IsBlank(name) {
		o.cn = name
	}
	return o
}

func (o *Organizer) SetSentBy(mail string) *Organizer {
	if !utils.IsBlank(mail) {
		o.sentBy = utils.NewCalAddress(mail)
	}
	return o
}

func (o *Organizer) SetDirectory(dir string) *Organizer {
	if !utils.IsBlank(dir) {
		o.dir = dir
	}
	return o
}

func (o *Organizer) SetLanguage(language string) *Organizer {
	if !utils.IsBlank(language) {
		o.language = language
	}
	return o
}

func (o *Organizer) Render() (string, []utils.Param, error) {
	if o == nil {
		return "", nil, utils.InvalidState("organizer is nil", nil)
	}
	if o.err != nil {
		return "", nil, o.err
	}
	params := make([]utils.Param, 0, 4)
	if o.cn != "" {
		params = append(params, utils.NewParam("CN", o.cn))
	}
	if o.sentBy != "" {
		params = append(params, utils.NewParam("SENT-BY", o.sentBy))
	}
	if o.dir != "" {
		params = append(params, utils.NewParam("DIR", o.dir))
	}
	if o.language != "" {
		params = append(params, utils.NewParam("LANGUAGE", o.language))
	}
	return utils.NewCalAddress(o.mail), params, nil
}
