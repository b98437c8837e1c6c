// Package stdlib implements the load_module external interface named in
// §6: a fixed table of standard-library modules available to scripts via
// `import std:name`. timer and web are the two modules this specification
// actually requires (they back the handle bridges); the rest are
// intentionally minimal, honestly-labeled stubs — the leaf modules
// themselves are out of scope per §1, named only via this loader contract.
package stdlib

import (
	"github.com/BDNK1/flowlang/runtime"
	"github.com/BDNK1/flowlang/timerbridge"
	"github.com/BDNK1/flowlang/value"
	"github.com/BDNK1/flowlang/webbridge"
)

// Loader implements interpreter.ModuleLoader. It is built once per process
// and shared across every Evaluator clone since module tables never change
// at runtime.
type Loader struct {
	rt      *runtime.Runtime
	modules map[string]map[string]value.Value
}

func NewLoader(rt *runtime.Runtime) *Loader {
	l := &Loader{rt: rt}
	l.modules = map[string]map[string]value.Value{
		"timer": timerbridge.Module(rt),
		"web":   webbridge.Module(rt),
		"math":  mathModule(),
		"string": stringModule(),
		"array":  arrayModule(),
		"json":   jsonModule(),
		"crypto": cryptoModule(),
		"net":    netModule(),
		"git":    gitModule(),
		"url":    urlModule(),
		"time":   timeModule(),
		"path":   pathModule(),
		"process": processModule(),
		"os":      osModule(),
		"cli":     cliModule(),
		"file":    fileModule(),
		"color":   colorModule(),
		"stream":  streamModule(),
	}
	return l
}

func (l *Loader) LoadModule(name string) (map[string]value.Value, bool) {
	m, ok := l.modules[name]
	return m, ok
}
