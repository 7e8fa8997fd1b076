package msh

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20"
)

// MinPrimeBits is the smallest group prime accepted by the
// multiplicative construction.
const MinPrimeBits = 128

// maxMapRetries bounds the rejection sampling loop in mapToGroup. A
// candidate is truncated to bitlen(p) bits, so each draw lands inside
// [2, p-1) with probability at least 1/2 for any prime of MinPrimeBits
// or more, and 64 straight rejections have probability below 2^-64.
const maxMapRetries = 64

// defaultPrime is 2^3072 - 1103717, the largest 3072-bit safe prime,
// the same modulus used by kaspanet/go-muhash.
var defaultPrime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 3072), big.NewInt(1103717))

// MuHash accumulates elements into a running product over the
// multiplicative group mod a large prime. It takes no key; collision
// resistance follows from a discrete-log-type hardness assumption in
// the group. The accumulator is append-only: no inverse operation is
// exposed, so absorbed elements cannot be removed.
type MuHash struct {
	prime *big.Int
	width int
	state *big.Int // running product, identity 1
}

// NewMuHash creates a multiplicative accumulator over the default
// 3072-bit prime. Digests from the default group are stable across
// processes.
func NewMuHash() *MuHash {
	return &MuHash{
		prime: new(big.Int).Set(defaultPrime),
		width: (defaultPrime.BitLen() + 7) / 8,
		state: big.NewInt(1),
	}
}

// GenerateMuHash creates a multiplicative accumulator over a freshly
// generated probable prime of the given bit length. Digests are only
// comparable between accumulators sharing the same prime.
func GenerateMuHash(bits int) (*MuHash, error) {
	if bits < MinPrimeBits {
		return nil, PrimeError{fmt.Sprintf("prime size %d below minimum %d", bits, MinPrimeBits)}
	}
	p, err := rand.Prime(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrap(err, "generating group prime")
	}
	return &MuHash{
		prime: p,
		width: (p.BitLen() + 7) / 8,
		state: big.NewInt(1),
	}, nil
}

// NewMuHashPrime creates a multiplicative accumulator over a
// caller-supplied prime of at least MinPrimeBits bits.
func NewMuHashPrime(p *big.Int) (*MuHash, error) {
	if p == nil || p.BitLen() < MinPrimeBits {
		return nil, PrimeError{fmt.Sprintf("prime must have at least %d bits", MinPrimeBits)}
	}
	if !p.ProbablyPrime(64) {
		return nil, PrimeError{"value failed the primality check"}
	}
	return &MuHash{
		prime: new(big.Int).Set(p),
		width: (p.BitLen() + 7) / 8,
		state: big.NewInt(1),
	}, nil
}

func (mu *MuHash) Hash(m Multiset) ([]byte, error) {
	// map every element before touching the state, so that a failed
	// mapping leaves the accumulator as it was
	factors := make([]*big.Int, 0, len(m))
	mults := make([]uint64, 0, len(m))
	for elem, mult := range m {
		g, err := mapToGroup(mu.prime, []byte(elem))
		if err != nil {
			return nil, err
		}
		factors = append(factors, g)
		mults = append(mults, mult)
	}
	mu.Reset()
	for i, g := range factors {
		mu.fold(g, mults[i])
	}
	return mu.Current(), nil
}

func (mu *MuHash) Update(elem []byte, mult uint64) ([]byte, error) {
	g, err := mapToGroup(mu.prime, elem)
	if err != nil {
		return nil, err
	}
	mu.fold(g, mult)
	return mu.Current(), nil
}

// fold multiplies g^mult into the running product.
func (mu *MuHash) fold(g *big.Int, mult uint64) {
	e := new(big.Int).SetUint64(mult)
	mu.state.Mul(mu.state, new(big.Int).Exp(g, e, mu.prime))
	mu.state.Mod(mu.state, mu.prime)
}

func (mu *MuHash) Reset() {
	mu.state.SetUint64(1)
}

func (mu *MuHash) Current() []byte {
	out := make([]byte, mu.width)
	mu.state.FillBytes(out)
	return out
}

var two = big.NewInt(2)

// mapToGroup deterministically maps elem to a group element in
// [2, p-1). The blake2b hash of the tagged element keys a chacha20
// stream, following kaspanet/go-muhash; the retry counter rides in the
// stream nonce, so every attempt is a fresh deterministic candidate and
// the same element always maps to the same group element.
func mapToGroup(p *big.Int, elem []byte) (*big.Int, error) {
	seed := unkeyedSum(tagMu, elem, nil)
	upper := new(big.Int).Sub(p, big.NewInt(1))
	buf := make([]byte, (p.BitLen()+7)/8)
	var nonce [chacha20.NonceSize]byte
	for retry := 0; retry < maxMapRetries; retry++ {
		binary.LittleEndian.PutUint32(nonce[0:4], uint32(retry))
		stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
		if err != nil {
			panic(err) // key and nonce sizes are constant
		}
		for i := range buf {
			buf[i] = 0
		}
		stream.XORKeyStream(buf, buf)
		// truncate to bitlen(p) bits so the candidate is below 2^bitlen(p)
		if excess := len(buf)*8 - p.BitLen(); excess > 0 {
			buf[0] &= 0xff >> excess
		}
		c := new(big.Int).SetBytes(buf)
		if c.Cmp(two) >= 0 && c.Cmp(upper) < 0 {
			return c, nil
		}
	}
	return nil, MappingExhaustedError{maxMapRetries}
}
