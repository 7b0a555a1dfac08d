// Package registry implements the node-type catalog: named pin signatures
// that manifests declare and graphs instantiate nodes from.
package registry
