package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusDest   = "org.freedesktop.Notifications"
	dbusPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	dbusNotify = "org.freedesktop.Notifications.Notify"
)

// DBusNotifier talks to the notification daemon directly over the session bus.
type DBusNotifier struct {
	AppName string
	Icon    string
	// Expire is the display time; zero leaves it to the server.
	Expire  time.Duration
	Timeout time.Duration
	// Open returns the notification service object and a release func.
	// Defaults to a private session bus connection.
	Open func(ctx context.Context) (dbus.BusObject, func() error, error)
}

func (n DBusNotifier) Notify(ctx context.Context, title, body string) error {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	open := n.Open
	if open == nil {
		open = openSessionBus
	}
	obj, release, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer release()

	expire := int32(-1)
	if n.Expire > 0 {
		expire = int32(n.Expire.Milliseconds())
	}

	appName := n.AppName
	if appName == "" {
		appName = "region-shot"
	}

	call := obj.CallWithContext(ctx, dbusNotify, 0,
		appName, uint32(0), n.Icon, title, body,
		[]string{}, map[string]dbus.Variant{}, expire)
	if call.Err != nil {
		return fmt.Errorf("failed to show notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("unexpected notification reply: %w", err)
	}
	return nil
}

func openSessionBus(ctx context.Context) (dbus.BusObject, func() error, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	return conn.Object(dbusDest, dbusPath), conn.Close, nil
}
