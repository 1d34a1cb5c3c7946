package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/widget"
)

const (
	// DBusInterface is the widget interface name.
	DBusInterface = "io.github.jmylchreest.PlatePix1"
	// DBusPath is the widget object path.
	DBusPath = "/io/github/jmylchreest/PlatePix1"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.PlatePix1"
)

// ErrNotConnected is returned when emitting a signal before Start.
var ErrNotConnected = errors.New("not connected to D-Bus")

// Source provides the entries served over the bus.
type Source interface {
	Entry(set catalog.Set) (widget.Entry, error)
	ThemeID() string
	Sets() []catalog.Set
	Refresh()
}

// WidgetServer implements the io.github.jmylchreest.PlatePix1 interface.
type WidgetServer struct {
	conn   *dbus.Conn
	source Source
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewWidgetServer creates a new WidgetServer backed by source.
func NewWidgetServer(source Source, logger *slog.Logger) *WidgetServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WidgetServer{
		source: source,
		logger: logger,
	}
}

// Start connects to the session bus and exports the widget service.
func (s *WidgetServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: widgetMethods(),
				Signals: widgetSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus widget server started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// Stop releases the bus name.
func (s *WidgetServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus widget server stopped")
	return nil
}

// GetToday returns today's entry for a message set.
// D-Bus method: GetToday(s) -> (issb)
func (s *WidgetServer) GetToday(set string) (int32, string, string, bool, *dbus.Error) {
	s.logger.Debug("GetToday called", "set", set)

	parsed, err := catalog.ParseSet(set)
	if err != nil {
		return 0, "", "", false, dbus.MakeFailedError(err)
	}
	e, err := s.source.Entry(parsed)
	if err != nil {
		return 0, "", "", false, dbus.MakeFailedError(err)
	}
	return int32(e.ItemID), e.Text, e.ThemeID, e.Placeholder, nil
}

// GetTheme returns the theme the widget renders with.
// D-Bus method: GetTheme() -> s
func (s *WidgetServer) GetTheme() (string, *dbus.Error) {
	return s.source.ThemeID(), nil
}

// ListSets returns the message sets the widget renders.
// D-Bus method: ListSets() -> as
func (s *WidgetServer) ListSets() ([]string, *dbus.Error) {
	sets := s.source.Sets()
	out := make([]string, 0, len(sets))
	for _, set := range sets {
		out = append(out, string(set))
	}
	return out, nil
}

// Refresh asks the daemon to regenerate its entries.
// D-Bus method: Refresh()
func (s *WidgetServer) Refresh() *dbus.Error {
	s.logger.Debug("Refresh called")
	s.source.Refresh()
	return nil
}

// widgetMethods returns the D-Bus method introspection data.
func widgetMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetToday",
			Args: []introspect.Arg{
				{Name: "set", Type: "s", Direction: "in"},
				{Name: "id", Type: "i", Direction: "out"},
				{Name: "text", Type: "s", Direction: "out"},
				{Name: "theme", Type: "s", Direction: "out"},
				{Name: "placeholder", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "GetTheme",
			Args: []introspect.Arg{
				{Name: "theme", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "ListSets",
			Args: []introspect.Arg{
				{Name: "sets", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "Refresh",
		},
	}
}

// widgetSignals returns the D-Bus signal introspection data.
func widgetSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "EntryChanged",
			Args: []introspect.Arg{
				{Name: "set", Type: "s"},
				{Name: "id", Type: "i"},
				{Name: "text", Type: "s"},
				{Name: "theme", Type: "s"},
			},
		},
		{
			Name: "ThemeChanged",
			Args: []introspect.Arg{
				{Name: "theme", Type: "s"},
			},
		},
	}
}
