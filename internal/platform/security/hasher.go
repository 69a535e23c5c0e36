package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"

	argonKeyLen  = 32
	argonSaltLen = 16
	argonPrefix  = "$argon2id$"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")
	ErrMalformedHash    = errors.New("malformed password hash")
)

// PasswordHasher はソルト済みパスワードのハッシュ化と検証を行います。
type PasswordHasher interface {
	Hash(salted string) (string, error)
	Verify(hash, salted string) (bool, error)
}

// Params はハッシュアルゴリズムの設定です。
type Params struct {
	Algorithm      string `env:"ALGORITHM" envDefault:"argon2id"`
	ArgonTime      uint32 `env:"ARGON_TIME" envDefault:"1"`
	ArgonMemoryKiB uint32 `env:"ARGON_MEMORY" envDefault:"65536"`
	ArgonThreads   uint8  `env:"ARGON_THREADS" envDefault:"4"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`
}

// Argon2idHasher はPHC文字列形式でargon2idハッシュを生成します。
type Argon2idHasher struct {
	Time    uint32
	MemKiB  uint32
	Threads uint8
}

var _ PasswordHasher = (*Argon2idHasher)(nil)

func (h *Argon2idHasher) Hash(salted string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate argon2 salt: %w", err)
	}
	key := argon2.IDKey([]byte(salted), salt, h.Time, h.MemKiB, h.Threads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.MemKiB, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify はハッシュに埋め込まれたパラメータで再計算し、定数時間で比較します。
func (h *Argon2idHasher) Verify(hash, salted string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}
	var (
		mem, t  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &t, &threads); err != nil {
		return false, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedHash
	}
	got := argon2.IDKey([]byte(salted), salt, t, mem, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// BcryptHasher はbcryptでハッシュ化します。
// 入力はSHA-256で事前ハッシュし、bcryptの72バイト制限を超えないようにします。
type BcryptHasher struct {
	Cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

func prehash(salted string) []byte {
	sum := sha256.Sum256([]byte(salted))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (h *BcryptHasher) Hash(salted string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(prehash(salted), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(hash, salted string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(salted))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// Hasher は設定されたアルゴリズムでハッシュ化し、検証時はハッシュのプレフィックスで実装を選びます。
// アルゴリズムを切り替えても既存のハッシュは検証できます。
type Hasher struct {
	primary PasswordHasher
	argon   *Argon2idHasher
	bcrypt  *BcryptHasher
	dummy   string
}

var _ PasswordHasher = (*Hasher)(nil)

// NewHasher はParamsからHasherを生成します。
// タイミング攻撃対策用のダミーハッシュもここで一度だけ計算します。
func NewHasher(p Params) (*Hasher, error) {
	h := &Hasher{
		argon:  &Argon2idHasher{Time: p.ArgonTime, MemKiB: p.ArgonMemoryKiB, Threads: p.ArgonThreads},
		bcrypt: &BcryptHasher{Cost: p.BcryptCost},
	}
	switch p.Algorithm {
	case AlgorithmArgon2id, "":
		h.primary = h.argon
	case AlgorithmBcrypt:
		h.primary = h.bcrypt
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, p.Algorithm)
	}
	dummy, err := h.primary.Hash("timing-equalizer")
	if err != nil {
		return nil, err
	}
	h.dummy = dummy
	return h, nil
}

func (h *Hasher) Hash(salted string) (string, error) {
	return h.primary.Hash(salted)
}

func (h *Hasher) Verify(hash, salted string) (bool, error) {
	if strings.HasPrefix(hash, argonPrefix) {
		return h.argon.Verify(hash, salted)
	}
	if strings.HasPrefix(hash, "$2") {
		return h.bcrypt.Verify(hash, salted)
	}
	return false, ErrMalformedHash
}

// DummyHash は存在しないユーザーのログイン時に検証対象として使う有効なハッシュを返します。
func (h *Hasher) DummyHash() string {
	return h.dummy
}
