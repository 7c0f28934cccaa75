// Package hydrator turns document class metadata into Go source that converts
// a persisted document (map[string]any) into a typed in-memory value.
//
// Factory.GenerateHydratorClasses is the eager path used at warm-up time: it
// renders one <class>_hydrator.go per class with jennifer plus a shared
// helpers file, and writes everything through the cache store. Factory.Ensure
// is the lazy path: with AutoGenerate enabled, a missing hydrator is rendered
// the first time it is asked for.
package hydrator
