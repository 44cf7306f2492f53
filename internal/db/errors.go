package db

import "errors"

// Sentinel errors of the store layer.
var (
	ErrIndexExists = errors.New("db: index already exists")
	ErrNoAddrs     = errors.New("db: at least one address is required")
)

// Command names reported in Error.Op.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpDel         = "DEL"
	OpHSet        = "HSET"
)

// Error carries the failing command alongside the cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
