// Package server hosts the Fiber HTTP service that exposes warm-up
// diagnostics: which warmers ran, how each document manager fared, and which
// hydrator artifacts are on disk. The app only serves /-/ paths; anything else
// answers 404. It is started by the CLI with --serve after warm-up finished,
// so handlers read immutable results and never trigger generation themselves.
package server
