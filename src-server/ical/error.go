package ical

import (
	"davcal/src-server/ical/utils"
)

type (
	CustomError = utils.CustomError
	Param       = utils.Param
)

var (
	ErrInvalidArgument = utils.ErrInvalidArgument
	ErrOutOfRange      = utils.ErrOutOfRange
	ErrInvalidState    = utils.ErrInvalidState
	ErrNoSuchOperation = utils.ErrNoSuchOperation
	ErrLookupFailure   = utils.ErrLookupFailure
)

// Create a property parameter, e.g. `ical.NewParam("RELTYPE", "CHILD")`
func NewParam(name string, values ...string) Param {
	return utils.NewParam(name, values...)
}
