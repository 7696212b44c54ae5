package entity

import "errors"

var (
	// ErrVersionConflict rejects an update whose expected version does not
	// match the stored one. The caller re-reads and retries; nothing was
	// written.
	ErrVersionConflict = errors.New("version conflict")

	// ErrNotFound means target resolution found no record.
	ErrNotFound = errors.New("entity not found")

	// ErrNotSupported means the store lacks an optional capability (direct
	// by-key reads). A capability gap, not a data error.
	ErrNotSupported = errors.New("operation not supported by store")

	// ErrAlreadyExists reports a best-effort uniqueness violation detected
	// by a pre-create lookup. Concurrent creates can still race past it;
	// the store enforces no uniqueness.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrUnsafeQueryValue rejects a filter value that cannot be rendered
	// as a quoted query literal.
	ErrUnsafeQueryValue = errors.New("unsafe query literal")
)
