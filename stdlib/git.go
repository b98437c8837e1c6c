package stdlib

import (
	"github.com/go-git/go-git/v5"

	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// gitModule wraps go-git/go-git for the git.clone builtin. Grounding for
// this particular choice is weaker than the rest of the domain stack — no
// pack repo's full source exercises a git client directly, only manifests
// reference go-git for the same embed-a-git-client need — so this stays a
// single-operation wrapper rather than a fuller porcelain, per DESIGN.md.
func gitModule() map[string]value.Value {
	return map[string]value.Value{
		"clone": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.Null(), ferr.Runtimef(0, 0, "git.clone requires (url, destPath)")
			}
			url, dest := args[0].String(), args[1].String()
			_, err := git.PlainClone(dest, false, &git.CloneOptions{URL: url})
			if err != nil {
				return value.Bool(false), ferr.New(ferr.Rift, err.Error(), 0, 0)
			}
			return value.Bool(true), nil
		}),
	}
}
