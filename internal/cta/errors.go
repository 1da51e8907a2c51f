package cta

import "errors"

// ErrNetworkNotFound is returned when a network has no entry in the
// percentage table.
var ErrNetworkNotFound = errors.New("network not found")

// ErrUnknownCta is returned when a short code does not name any CTA.
var ErrUnknownCta = errors.New("unknown cta")
