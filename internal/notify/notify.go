// Package notify delivers best-effort desktop notifications. Failures
// are swallowed: a missing notification must never fail a commit.
package notify

import "os/exec"

// Notifier sends a desktop notification.
type Notifier interface {
	Send(summary, body string)
}

// NotifySend shells out to the freedesktop notify-send utility.
type NotifySend struct {
	icon string
}

// NewNotifySend returns a notifier using the given icon path; empty means
// no icon.
func NewNotifySend(icon string) *NotifySend {
	return &NotifySend{icon: icon}
}

func (n *NotifySend) Send(summary, body string) {
	args := []string{}
	if n.icon != "" {
		args = append(args, "-i", n.icon)
	}
	args = append(args, summary, body)
	// Best-effort: errors (missing binary, no session bus) are ignored.
	_ = exec.Command("notify-send", args...).Run()
}

// Noop discards notifications.
type Noop struct{}

func (Noop) Send(string, string) {}
