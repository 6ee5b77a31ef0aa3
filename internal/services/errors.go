package services

import "errors"

// Service errors
var (
	ErrNoArchives = errors.New("no archives given")
)
