package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects where the API key for a prediction comes from.
type Mode string

const (
	// ModeEnv uses the process-wide key from GEMINI_API_KEY.
	ModeEnv Mode = "env"
	// ModeManual uses a key typed into the page and sent with each request.
	ModeManual Mode = "manual"
	// ModeHost uses a key picked in the host's selector dialog. The server
	// tracks whether the session has a key ready. The picked key stays with
	// the host page and is never sent here, so calls are made with
	// GEMINI_API_KEY unless the browser supplies a key header.
	ModeHost Mode = "host"
)

var (
	ErrMissingCredential = errors.New("no API key available")
	ErrUnknownMode       = errors.New("unknown credential mode")
)

// ParseMode accepts a mode name case-insensitively. Empty means ModeEnv.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeEnv, nil
	case ModeEnv, ModeManual, ModeHost:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// UsesSession reports whether the mode keeps a per-session readiness flag.
func (m Mode) UsesSession() bool {
	return m == ModeHost
}

// Resolver picks the key for a call.
type Resolver struct {
	mode   Mode
	envKey string
}

func NewResolver(mode Mode, envKey string) *Resolver {
	return &Resolver{mode: mode, envKey: strings.TrimSpace(envKey)}
}

func (r *Resolver) Mode() Mode {
	return r.mode
}

// HasServerKey reports whether a process-wide key is configured.
func (r *Resolver) HasServerKey() bool {
	return r.envKey != ""
}

// Resolve returns the configured key in env mode. In the other modes the
// caller's key wins and the configured key is only a fallback.
func (r *Resolver) Resolve(supplied string) (string, error) {
	supplied = strings.TrimSpace(supplied)
	if r.mode != ModeEnv && supplied != "" {
		return supplied, nil
	}
	if r.envKey != "" {
		return r.envKey, nil
	}
	return "", ErrMissingCredential
}
