package vss

import "errors"

var (
	errNoExponents    = errors.New("vss: no polynomials to sum")
	errDegreeMismatch = errors.New("vss: polynomial degree mismatch")
)
