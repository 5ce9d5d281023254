// Package loom merges named data sources into flat records according
// to a small declarative format.
//
// The format parser and selectors are in package 'format', source
// plumbing is in 'source', the tick-driven merge loop is in 'merge',
// and the daemon is in 'cmd/loom'.
package loom
