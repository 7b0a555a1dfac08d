// Package hcl_adapter loads node-type manifests and graph declarations
// written in HCL and translates them into the format-agnostic config
// document.
package hcl_adapter
