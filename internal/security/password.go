package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

// Upper bounds for Argon2id parameters. Verify refuses stored hashes above
// them and NewHasher never produces one.
const (
	MaxMemoryKiB = 1 << 20
	MaxTime      = 32
)

// HasherParams are the Argon2id cost parameters used for new hashes.
// Existing hashes carry their own parameters and verify regardless.
type HasherParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLength uint32
}

// DefaultHasherParams follows the OWASP recommendation for Argon2id.
var DefaultHasherParams = HasherParams{
	Time:      3,
	MemoryKiB: 64 * 1024,
	Threads:   2,
	KeyLength: 32,
}

type Hasher struct {
	params HasherParams
}

func NewHasher(p HasherParams) *Hasher {
	if p.Time == 0 {
		p.Time = DefaultHasherParams.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultHasherParams.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultHasherParams.Threads
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultHasherParams.KeyLength
	}
	p.MemoryKiB = min(p.MemoryKiB, MaxMemoryKiB)
	p.Time = min(p.Time, MaxTime)
	return &Hasher{params: p}
}

// Hash derives an Argon2id key from password with a fresh random salt and
// returns it in PHC string format.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKiB, h.params.Threads, h.params.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. Malformed hashes
// never match.
func (h *Hasher) Verify(encodedHash, password string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > MaxMemoryKiB || time == 0 || time > MaxTime || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, got) == 1
}
