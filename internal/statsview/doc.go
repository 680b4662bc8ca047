// Package statsview serves runtime statistics over HTTP while the emulator
// runs. It is only functional in builds with the statsview tag; otherwise
// Launch does nothing and Available reports false.
//
// Once launched, graphs are at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof endpoints at
//
//	localhost:12600/debug/pprof/
package statsview
