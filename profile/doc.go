// Package profile provides optional runtime profiling for the denv command.
//
// Profiling is compiled in only with the "pprof" build tag, which wires
// [github.com/pkg/profile]. Without the tag every [Profiler] is a no-op.
//
//	go build -tags pprof .
//	denv --pprof-mode cpu --pprof-dir ./profiles fmt
//	go tool pprof ./profiles/cpu.pprof
//
// Use [Modes] to list the supported modes of the current build.
package profile
