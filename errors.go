package nbt

import "errors"

var ErrUnexpectedEOF = errors.New("nbt: unexpected end of data")
var ErrUnknownTag = errors.New("nbt: unknown tag type")
var ErrNegativeLength = errors.New("nbt: negative length")
var ErrDepthExceeded = errors.New("nbt: nesting depth exceeded")
var ErrTypeMismatch = errors.New("nbt: tag type mismatch")
var ErrInvalidSNBT = errors.New("nbt: invalid snbt")
