package security

import (
	"encoding/hex"
	"testing"
)

func TestGenerateResetToken(t *testing.T) {
	token, digest, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(token) != 40 {
		t.Fatalf("expected 40 hex chars, got %d", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if digest == token {
		t.Fatal("digest must not equal the raw token")
	}
	if HashResetToken(" "+token+"\n") != digest {
		t.Fatal("expected digest to ignore surrounding whitespace")
	}

	other, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if other == token {
		t.Fatal("expected distinct tokens")
	}
}
