package loadorder

import "errors"

var (
	ErrOutOfRange  = errors.New("index out of range")
	ErrStaleMaster = errors.New("master file changed since dependent was saved")
	ErrNoMaster    = errors.New("base master file missing")
	ErrBadManifest = errors.New("invalid load order manifest")
)
