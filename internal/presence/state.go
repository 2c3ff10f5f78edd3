package presence

import (
	"errors"

	"tools.zach/dev/vlccord/internal/vlc"
)

// Kind is the player state as seen by the poll loop.
type Kind uint8

const (
	// Unknown is the state before the first conclusive tick, and after a
	// Discord reconnect.
	Unknown Kind = iota
	// Offline means the VLC web interface refused the connection.
	Offline
	// Idle means VLC is stopped, or playing ignored media.
	Idle
	// Active means VLC is playing or paused.
	Active
)

func (k Kind) String() string {
	switch k {
	case Offline:
		return "offline"
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// State is the poll loop's state. Playing is meaningful only when Kind is
// Active.
type State struct {
	Kind    Kind
	Playing bool
}

func (s State) String() string {
	if s.Kind != Active {
		return s.Kind.String()
	}
	if s.Playing {
		return "active(playing)"
	}
	return "active(paused)"
}

// observation is what one fetch tells the state machine.
type observation uint8

const (
	// sawTransient is a failed fetch that says nothing about VLC's state.
	sawTransient observation = iota
	sawUnreachable
	sawStopped
	sawPlaying
	sawPaused
)

// observe maps a fetch result to an observation. ignored reports whether
// the snapshot's media is excluded from display.
func observe(snap *vlc.Snapshot, err error, ignored bool) observation {
	switch {
	case errors.Is(err, vlc.ErrUnreachable):
		return sawUnreachable
	case err != nil || snap == nil:
		return sawTransient
	case snap.State == vlc.StateStopped || ignored:
		return sawStopped
	case snap.State == vlc.StatePlaying:
		return sawPlaying
	default:
		return sawPaused
	}
}

// next is the transition function. A transient observation keeps the
// current state.
func (s State) next(o observation) State {
	switch o {
	case sawUnreachable:
		return State{Kind: Offline}
	case sawStopped:
		return State{Kind: Idle}
	case sawPlaying:
		return State{Kind: Active, Playing: true}
	case sawPaused:
		return State{Kind: Active}
	default:
		return s
	}
}
