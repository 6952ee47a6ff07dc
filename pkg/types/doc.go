// Package types defines the prophecy Record and Row shapes, the bridge
// configuration, and the standard errors shared by the codec, migrator,
// document store and tabular adapter.
//
// A Record is the canonical hierarchical form persisted in the document.
// A Row is its fixed-width flat form exchanged with a tabular surface.
package types
