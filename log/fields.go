package log

import "go.uber.org/zap"

var (
	Skip       = zap.Skip
	Binary     = zap.Binary
	Bool       = zap.Bool
	ByteString = zap.ByteString
	Float64    = zap.Float64
	Float64s   = zap.Float64s
	Float32    = zap.Float32
	Int        = zap.Int
	Ints       = zap.Ints
	Int64      = zap.Int64
	Int32      = zap.Int32
	Uint32     = zap.Uint32
	Uint64     = zap.Uint64
	String     = zap.String
	Strings    = zap.Strings
	Stringer   = zap.Stringer
	Time       = zap.Time
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error
	NamedError = zap.NamedError
	Reflect    = zap.Reflect
	Namespace  = zap.Namespace
	Object     = zap.Object
	Inline     = zap.Inline
	Stack      = zap.Stack
	StackSkip  = zap.StackSkip
)
