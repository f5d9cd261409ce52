// Package infra contains technical adapters such as the LP-backed
// integer solver, scenario sources and result sinks. These packages
// should depend only on the interfaces defined in the core packages.
package infra
