// Package theme provides the colour themes shared by the platepix app and
// widget. Themes are bundled TOML palettes; the active theme id is mirrored
// between processes through the shared namespace.
package theme
