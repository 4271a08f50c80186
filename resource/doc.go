// Package resource defines the references to externally-managed resources
// that are collected into working sets.
package resource
