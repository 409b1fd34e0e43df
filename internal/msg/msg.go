package msg

import (
	"time"

	"github.com/marcus/scratchpad/internal/host"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	Level    host.Level
}

// ToastDuration is how long a toast of the given level stays up.
func ToastDuration(level host.Level) time.Duration {
	switch level {
	case host.LevelError:
		return 5 * time.Second
	case host.LevelWarn:
		return 4 * time.Second
	default:
		return 2 * time.Second
	}
}

// ClearToastMsg expires the toast with the matching sequence number.
type ClearToastMsg struct {
	Seq int
}

// RunMsg carries a scheduled callback back onto the event loop.
type RunMsg struct {
	Fn func()
}

// FileChangedMsg reports an external change to a watched file.
type FileChangedMsg struct {
	Path string
}
