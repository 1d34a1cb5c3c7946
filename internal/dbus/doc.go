// Package dbus exports the platepix widget service on the session bus.
// Panels and launchers can ask platepixd for today's entries and listen
// for change signals instead of polling the snapshot file.
package dbus
