package structured

import (
	"davcal/src-server/ical/utils"
)

// A CONTACT value (RFC5545 3.8.4.2). Unlike attendees and organizers the
// address is free text, not a calendar address.
type Contact struct {
	text     string
	language string
	altRep   string
}

func NewContact(text string) *Contact {
	return &Contact{text: text}
}

func (c *Contact) SetLanguage(language string) *Contact {
	if !utils.IsBlank(language) {
		c.language = language
	}
	return c
}

// Set ALTREP, a URI to an alternate representation of the contact
func (c *Contact) SetAlternateRepresentation(altRep string) *Contact {
	if !utils.IsBlank(altRep) {
		c.altRep = altRep
	}
	return c
}

func (c *Contact) Render() (string, []utils.Param, error) {
	if c == nil || utils.IsBlank(c.text) {
		return "", nil, utils.InvalidState("contact has no text", nil)
	}
	params := make([]utils.Param, 0, 2)
	if c.language != "" {
		params = append(params, utils.NewParam("LANGUAGE", c.language))
	}
	if c.altRep != "" {
		params = append(params, utils.NewParam("ALTREP", c.altRep))
	}
	return c.text, params, nil
}
