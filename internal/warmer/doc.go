// Package warmer runs the startup warm-up steps that must finish before the
// application serves traffic.
//
// HydratorCacheWarmer is the mandatory step that prepares the hydrator
// directory and, unless hydrators are generated on demand, regenerates the
// hydrators of every configured document manager. Aggregate runs a list of
// warmers in order, aborting on a mandatory failure and only logging optional
// ones.
package warmer
