package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash signals a stored hash in neither supported format.
var ErrInvalidHash = errors.New("invalid password hash")

const argonPrefix = "$argon2id$"

// ArgonParams are encoded into every hash so verification never depends on
// the current config.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// HashPassword returns a PHC-formatted Argon2id hash.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	params := paramsFromConfig(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix, argon2.Version, params.Memory, params.Time, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against an Argon2id hash or a bcrypt hash
// carried over from accounts created before the Argon2id switch.
func VerifyPassword(password, encoded string) (bool, error) {
	if isBcrypt(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	params, salt, key, err := decodeArgon(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	return subtle.ConstantTimeCompare(key, computed) == 1, nil
}

// NeedsRehash reports whether encoded should be replaced after a successful
// login: bcrypt hashes, and Argon2id hashes with weaker or different
// parameters than cfg.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	if isBcrypt(encoded) {
		return true
	}
	params, _, _, err := decodeArgon(encoded)
	if err != nil {
		return true
	}
	return params != paramsFromConfig(cfg)
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      clamp(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clamp(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     clamp(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clamp(cfg.ArgonKeyLen, 16, 64),
	}
}

// decodeArgon parses $argon2id$v=19$m=..,t=..,p=..$salt$key.
func decodeArgon(encoded string) (ArgonParams, []byte, []byte, error) {
	if !strings.HasPrefix(encoded, argonPrefix) {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	var params ArgonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Parallelism); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(key))
	return params, salt, key, nil
}

func clamp(value, lo, hi int) uint32 {
	return uint32(min(max(value, lo), hi))
}
