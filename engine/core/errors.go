package core

import (
	"errors"
)

var (
	ErrCompileFailed  = errors.New("shader stage failed to compile")
	ErrLinkFailed     = errors.New("shader stage failed to link")
	ErrPipelineFailed = errors.New("program pipeline previously failed to link")
	ErrUnknownShader  = errors.New("no shader registered with that name")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnknown        = errors.New("unknown")
)
