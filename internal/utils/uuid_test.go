package utils

import (
	"strings"
	"testing"
)

func TestSignedID(t *testing.T) {
	secret := []byte("secret")
	id, err := GenerateSignedID(secret)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifySignedID(id, secret) {
		t.Errorf("fresh id %q did not verify", id)
	}
	if VerifySignedID(id, []byte("other")) {
		t.Error("id verified with the wrong secret")
	}

	tampered := strings.Replace(id, id[:1], "f", 1)
	if tampered != id && VerifySignedID(tampered, secret) {
		t.Error("tampered id verified")
	}
	for _, bad := range []string{"", "abc", "a-b-c-d-e-f", id + "-x"} {
		if VerifySignedID(bad, secret) {
			t.Errorf("VerifySignedID(%q) = true", bad)
		}
	}
}
