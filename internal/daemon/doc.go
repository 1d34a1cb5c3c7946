// Package daemon provides the main orchestration for platepixd.
// It regenerates widget entries at each local day boundary, writes the
// status-bar snapshot, follows theme and selection changes made by the
// platepix app, and hot-reloads its configuration.
package daemon
