package stdlib

import (
	"testing"

	"github.com/BDNK1/flowlang/runtime"
)

func TestLoaderResolvesEveryDeclaredModule(t *testing.T) {
	l := NewLoader(runtime.New())
	names := []string{
		"timer", "web", "math", "string", "array", "json", "crypto", "net",
		"git", "url", "time", "path", "process", "os", "cli", "file",
		"color", "stream",
	}
	for _, name := range names {
		if _, ok := l.LoadModule(name); !ok {
			t.Errorf("loader should resolve std:%s", name)
		}
	}
}

func TestLoaderUnknownModuleMisses(t *testing.T) {
	l := NewLoader(runtime.New())
	if _, ok := l.LoadModule("nope"); ok {
		t.Error("loader should report false for an unregistered module name")
	}
}
