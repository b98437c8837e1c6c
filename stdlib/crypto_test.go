package stdlib

import (
	"testing"

	"github.com/BDNK1/flowlang/value"
)

func TestCryptoHashIsDeterministic(t *testing.T) {
	m := cryptoModule()
	a := call(t, m, "hash", value.Str("secret"))
	b := call(t, m, "hash", value.Str("secret"))
	if a.String() != b.String() {
		t.Error("hashing the same input twice should produce the same digest")
	}
	if a.String() == "" || len(a.String()) != 64 {
		t.Errorf("sha256 hex digest should be 64 chars, got %d", len(a.String()))
	}
}

func TestCryptoHashRequiresArgument(t *testing.T) {
	m := cryptoModule()
	fn := m["hash"]
	_, err := fn.SyncFn()(nil)
	if err == nil {
		t.Error("hash with no arguments should return an error")
	}
}

func TestCryptoBcryptRoundTrip(t *testing.T) {
	m := cryptoModule()
	hashed := call(t, m, "bcrypt", value.Str("hunter2"))
	if hashed.String() == "hunter2" {
		t.Error("bcrypt output should not equal the plaintext input")
	}

	ok := call(t, m, "bcryptVerify", hashed, value.Str("hunter2"))
	if !ok.Bool() {
		t.Error("bcryptVerify should succeed against the matching password")
	}

	bad := call(t, m, "bcryptVerify", hashed, value.Str("wrong"))
	if bad.Bool() {
		t.Error("bcryptVerify should fail against a non-matching password")
	}
}

func TestCryptoBcryptVerifyMissingArgsReturnsFalse(t *testing.T) {
	m := cryptoModule()
	got := call(t, m, "bcryptVerify", value.Str("only one arg"))
	if got.Bool() {
		t.Error("bcryptVerify with missing arguments should return false, not error")
	}
}
