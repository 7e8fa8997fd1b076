package msh

import (
	"math/big"
)

// minModulus is 2^256, the output range of the keyed element hash. A
// smaller modulus would fold the hash output unevenly.
var minModulus = new(big.Int).Lsh(big.NewInt(1), 256)

// AddHash combines keyed per-element hashes by addition mod M. Unlike
// XORHash it binds multiplicities: element e with multiplicity k
// contributes k*H(key, e) to the running sum, so the construction is
// multiset-collision resistant under the keyed-hash assumption.
type AddHash struct {
	hasher *keyedHasher
	mod    *big.Int
	width  int // serialized digest width, fixed by the modulus
	state  *big.Int
}

// NewAddHash creates an additive accumulator over the default modulus
// 2^256. The key must be exactly KeySize bytes.
func NewAddHash(key []byte) (*AddHash, error) {
	return NewAddHashModulus(key, minModulus)
}

// NewAddHashModulus creates an additive accumulator over an explicit
// modulus, which must be at least 2^256.
func NewAddHashModulus(key []byte, m *big.Int) (*AddHash, error) {
	h, err := newKeyedHasher(key, tagAdd)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Sign() <= 0 {
		return nil, ModulusError{"modulus must be positive"}
	}
	if m.Cmp(minModulus) < 0 {
		return nil, ModulusError{"modulus smaller than the hash output range"}
	}
	return &AddHash{
		hasher: h,
		mod:    new(big.Int).Set(m),
		width:  (m.BitLen() + 7) / 8,
		state:  new(big.Int),
	}, nil
}

func (a *AddHash) Hash(m Multiset) ([]byte, error) {
	a.Reset()
	for elem, mult := range m {
		a.absorb([]byte(elem), mult)
	}
	return a.Current(), nil
}

func (a *AddHash) Update(elem []byte, mult uint64) ([]byte, error) {
	a.absorb(elem, mult)
	return a.Current(), nil
}

// absorb adds mult*H(key, elem) to the running sum. Scaling by the
// multiplicity gives the same residue as mult repeated additions.
func (a *AddHash) absorb(elem []byte, mult uint64) {
	h := a.hasher.sum(elem)
	term := new(big.Int).SetBytes(h[:])
	term.Mul(term, new(big.Int).SetUint64(mult))
	a.state.Add(a.state, term)
	a.state.Mod(a.state, a.mod)
}

func (a *AddHash) Reset() {
	a.state.SetUint64(0)
}

// Current returns the running sum as a big-endian encoding of
// ceil(bitlen(M)/8) bytes, leading zeros kept, so equal multisets
// always serialize identically.
func (a *AddHash) Current() []byte {
	out := make([]byte, a.width)
	a.state.FillBytes(out)
	return out
}
