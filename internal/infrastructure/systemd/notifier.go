package systemd

import (
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
)

// notifyFunc matches daemon.SdNotify.
type notifyFunc func(unsetEnvironment bool, state string) (bool, error)

// Notifier reports readiness and status lines to systemd.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Notifier struct {
	enabled bool
	notify  notifyFunc

	mu         sync.Mutex
	lastStatus string
}

// NewNotifier creates a Notifier. A disabled notifier never talks to systemd.
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		notify:  daemon.SdNotify,
	}
}

// Ready sends READY=1 together with an initial status line.
func (n *Notifier) Ready(status string) error {
	state := daemon.SdNotifyReady
	if status != "" {
		state += "\nSTATUS=" + status
	}
	return n.send(state)
}

// Status sends a STATUS= line. Implements logging.StatusNotifier.
func (n *Notifier) Status(text string) error {
	n.mu.Lock()
	n.lastStatus = text
	n.mu.Unlock()
	return n.send("STATUS=" + text)
}

// Stopping sends STOPPING=1.
func (n *Notifier) Stopping() error {
	return n.send(daemon.SdNotifyStopping)
}

// LastStatus returns the most recent status text passed to Status.
func (n *Notifier) LastStatus() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastStatus
}

func (n *Notifier) send(state string) error {
	if n == nil || !n.enabled {
		return nil
	}
	// sent is false when NOTIFY_SOCKET is unset; that is not an error
	if _, err := n.notify(false, state); err != nil {
		return fmt.Errorf("sd_notify: %w", err)
	}
	return nil
}
