package game

import "errors"

var (
	ErrSessionFull = errors.New("session full")
	ErrBlankName   = errors.New("blank display name")
)
