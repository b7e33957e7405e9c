package track

import "errors"

var (
	// Configuration errors. A branch attempt that hits one of these is
	// aborted and logged; the driver tries again on a later tick.
	ErrNoRoadTemplates   = errors.New("track: no road templates")
	ErrNoBranchTemplates = errors.New("track: no branch templates")
	ErrMissingDescriptor = errors.New("track: branch has no direction descriptor")

	// Commit signal misuse.
	ErrNoUnresolvedBranch = errors.New("track: no branch awaiting a choice")
	ErrUnknownBranch      = errors.New("track: handle is not the unresolved branch")
	ErrInvalidDirection   = errors.New("track: direction has no horizontal component")
	ErrReentrant          = errors.New("track: generator called re-entrantly")

	ErrAlreadyStarted = errors.New("track: generator already started")
)
