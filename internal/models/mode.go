package models

import (
	"fmt"
	"strings"
)

// Mode is an operating mode of the outreach pipeline.
type Mode string

const (
	ModeOnsite Mode = "onsite"
	ModeRemote Mode = "remote"
)

func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeOnsite:
		return ModeOnsite, nil
	case ModeRemote:
		return ModeRemote, nil
	default:
		return "", fmt.Errorf("unknown mode: %q", value)
	}
}
