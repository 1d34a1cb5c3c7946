// Package widget builds the entries shown by the home-screen widget: a
// placeholder before any data exists, a snapshot of today's item, and a
// timeline that asks to be refreshed at the next local midnight.
package widget
