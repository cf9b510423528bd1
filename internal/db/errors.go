package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	ErrUnavailable   = errors.New("db: unavailable")
)

// Op constants map to Redis command names for error context.
const (
	OpCreateIndex     = "FT.CREATE"
	OpDropIndex       = "FT.DROPINDEX"
	OpIndexInfo       = "FT.INFO"
	OpSearch          = "FT.SEARCH"
	OpJSONSet         = "JSON.SET"
	OpJSONGet         = "JSON.GET"
	OpDel             = "DEL"
	OpExists          = "EXISTS"
	OpScan            = "SCAN"
	OpGet             = "GET"
	OpSet             = "SET"
	OpExpire          = "EXPIRE"
	OpRename          = "RENAME"
	OpZAdd            = "ZADD"
	OpZRange          = "ZRANGE"
	OpZRem            = "ZREM"
	OpZRemRangeByRank = "ZREMRANGEBYRANK"
	OpRPush           = "RPUSH"
	OpLPop            = "LPOP"
	OpLLen            = "LLEN"
	OpLRange          = "LRANGE"
	OpLRem            = "LREM"
	OpSAdd            = "SADD"
	OpSRem            = "SREM"
	OpSIsMember       = "SISMEMBER"
	OpSMembers        = "SMEMBERS"
	OpSUnion          = "SUNION"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
