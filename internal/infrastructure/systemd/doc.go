// Package systemd sends sd_notify(3) messages to the service manager.
//
// A Notifier is a no-op when disabled in configuration or when the process
// was not started by systemd (NOTIFY_SOCKET unset). Notification failures are
// returned but callers treat them as best effort.
//
//	n := systemd.NewNotifier(cfg.Systemd.Notify)
//	n.Ready("configuration loaded")
//	defer n.Stopping()
package systemd
