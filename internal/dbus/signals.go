package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/platepix/internal/widget"
)

// EntryChanged emits the EntryChanged signal for e.
func (s *WidgetServer) EntryChanged(e widget.Entry) error {
	conn := s.Connection()
	if conn == nil {
		return ErrNotConnected
	}

	err := conn.Emit(DBusPath, DBusInterface+".EntryChanged", string(e.Set), int32(e.ItemID), e.Text, e.ThemeID)
	if err != nil {
		return fmt.Errorf("failed to emit EntryChanged signal: %w", err)
	}

	s.logger.Debug("emitted EntryChanged signal", "set", e.Set, "id", e.ItemID)
	return nil
}

// ThemeChanged emits the ThemeChanged signal.
func (s *WidgetServer) ThemeChanged(themeID string) error {
	conn := s.Connection()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.Emit(DBusPath, DBusInterface+".ThemeChanged", themeID); err != nil {
		return fmt.Errorf("failed to emit ThemeChanged signal: %w", err)
	}

	s.logger.Debug("emitted ThemeChanged signal", "theme", themeID)
	return nil
}

// Connection returns the underlying D-Bus connection, or nil before Start.
func (s *WidgetServer) Connection() *dbus.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
