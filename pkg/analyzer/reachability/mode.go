package reachability

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how members of reachable containers are treated.
type Mode string

const (
	// ModeStandard marks every member of a reachable container reachable.
	ModeStandard Mode = "standard"
	// ModeDeep applies member-level rules only and runs the extra detectors.
	ModeDeep Mode = "deep"
)

// ErrInvalidMode is returned for an unknown mode name.
var ErrInvalidMode = errors.New("invalid analysis mode")

// ParseMode parses a mode name. The empty string selects ModeStandard.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeDeep:
		return ModeDeep, nil
	}
	return "", fmt.Errorf("%w: %q (want standard or deep)", ErrInvalidMode, s)
}
