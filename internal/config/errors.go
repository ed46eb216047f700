package config

import "errors"

// ErrMandatoryOptionMissing is returned by validation when an option the
// requested operation cannot run without is absent from every configuration
// source.
var ErrMandatoryOptionMissing = errors.New("mandatory option is missing")
