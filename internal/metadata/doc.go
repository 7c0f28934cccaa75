// Package metadata describes the structural mapping of every document class a
// document manager knows about: collection name, identifier and field
// mappings with their persisted keys and types. Mappings are read from YAML
// files in a per-manager mapping directory and memoised by the Factory, so the
// hydrator generator and the warmer can ask for the full set repeatedly
// without re-reading the disk.
package metadata
