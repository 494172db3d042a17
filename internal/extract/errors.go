package extract

import "errors"

// ErrNoCaptureGroup is returned when a rule's pattern has nothing to extract.
var ErrNoCaptureGroup = errors.New("rule pattern has no capture group")

// ErrEmptyCurrencyMarker is returned when a blank currency marker is configured.
var ErrEmptyCurrencyMarker = errors.New("currency marker cannot be empty")
