package security_test

import (
	"testing"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", fastArgon)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword failed for the correct password: ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil || ok {
		t.Fatalf("VerifyPassword accepted an incorrect password: ok=%v err=%v", ok, err)
	}

	if security.NeedsRehash(hash, fastArgon) {
		t.Fatal("fresh hash should not need a rehash")
	}
	stronger := fastArgon
	stronger.ArgonTime = 3
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("changed parameters should require a rehash")
	}
}

func TestVerifyLegacyBcryptPassword(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("node-era-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	ok, err := security.VerifyPassword("node-era-password", string(legacy))
	if err != nil || !ok {
		t.Fatalf("expected bcrypt hash to verify: ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("wrong", string(legacy))
	if err != nil || ok {
		t.Fatalf("expected bcrypt mismatch: ok=%v err=%v", ok, err)
	}
	if !security.NeedsRehash(string(legacy), fastArgon) {
		t.Fatal("bcrypt hashes must be upgraded")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	for _, bad := range []string{
		"not-a-hash",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8,t=1,p=1$c2FsdA$",
		"$2b$10$short",
	} {
		if _, err := security.VerifyPassword("irrelevant", bad); err == nil {
			t.Fatalf("expected error for malformed hash %q", bad)
		}
	}
}
