// Package application wires storage, the platform allocator, HTTP handlers
// and the server together so the main package only parses flags and
// orchestrates shutdown.
package application
