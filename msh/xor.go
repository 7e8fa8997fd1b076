package msh

import (
	"golang.org/x/crypto/blake2b"
)

// XORHash combines keyed per-element hashes with bitwise XOR. The
// identity is the all-zero string and every element is its own inverse,
// so an element absorbed an even number of times vanishes from the
// digest. This makes XORHash set-collision resistant only; use AddHash
// or VectorHash when multiplicities must be bound by the digest.
type XORHash struct {
	hasher *keyedHasher
	state  [blake2b.Size256]byte
}

// NewXORHash creates an XOR accumulator with the given key. The key
// must be exactly KeySize bytes.
func NewXORHash(key []byte) (*XORHash, error) {
	h, err := newKeyedHasher(key, tagXOR)
	if err != nil {
		return nil, err
	}
	return &XORHash{hasher: h}, nil
}

func (x *XORHash) Hash(m Multiset) ([]byte, error) {
	x.Reset()
	for elem, mult := range m {
		x.absorb([]byte(elem), mult)
	}
	return x.Current(), nil
}

func (x *XORHash) Update(elem []byte, mult uint64) ([]byte, error) {
	x.absorb(elem, mult)
	return x.Current(), nil
}

// absorb folds H(key, elem) into the state mult times. XOR-ing a value
// twice cancels, so only the parity of mult matters.
func (x *XORHash) absorb(elem []byte, mult uint64) {
	if mult%2 == 0 {
		return
	}
	h := x.hasher.sum(elem)
	for i := range x.state {
		x.state[i] ^= h[i]
	}
}

func (x *XORHash) Reset() {
	x.state = [blake2b.Size256]byte{}
}

func (x *XORHash) Current() []byte {
	out := make([]byte, len(x.state))
	copy(out, x.state[:])
	return out
}
