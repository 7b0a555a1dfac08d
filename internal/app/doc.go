// Package app wires the application together: configuration, logging,
// document loading, graph construction, and reporting.
package app
