// Package builder turns a loaded config document into a live graph model:
// catalog registration, node instantiation, connection routing, grouping,
// and a final audit.
package builder
