// Package aggregates defines the write boundaries of the geo hierarchy.
//
// Contracts here avoid persistence and transport details. Each aggregate names the
// invariant it enforces atomically: the city population rollup into its country and
// the find-or-create resolution of continents by name.
package aggregates
