package services

import "errors"

// Service errors
var (
	ErrMapNotFound     = errors.New("map asset not found")
	ErrTooManyDistrict = errors.New("too many districts selected")
)
