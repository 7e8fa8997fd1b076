package msh

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/chacha20"
)

// MaxVectorDigestSize caps n*ceil(l/8), the serialized size of a vector
// digest, guarding against accidental huge-output requests.
const MaxVectorDigestSize = 1 << 20

// VectorHash maps each element to an n-dimensional vector of l-bit
// coordinates and accumulates by component-wise addition mod 2^l. It
// takes no key; the construction is multiset-collision resistant under
// a lattice hardness assumption, and multiplicity k scales the mapped
// vector by k before addition.
type VectorHash struct {
	n          int
	l          int
	coordWidth int      // serialized bytes per coordinate
	mod        *big.Int // 2^l
	state      []*big.Int
}

// NewVectorHash creates a vector accumulator with dimension n and
// per-coordinate width l bits. Both must be positive and the resulting
// digest must not exceed MaxVectorDigestSize bytes.
func NewVectorHash(n, l int) (*VectorHash, error) {
	if n <= 0 {
		return nil, ParameterError{fmt.Sprintf("dimension %d must be positive", n)}
	}
	if l <= 0 {
		return nil, ParameterError{fmt.Sprintf("coordinate width %d must be positive", l)}
	}
	coordWidth := (l + 7) / 8
	if n > MaxVectorDigestSize/coordWidth {
		return nil, ParameterError{fmt.Sprintf("digest size %d exceeds maximum %d", n*coordWidth, MaxVectorDigestSize)}
	}
	v := &VectorHash{
		n:          n,
		l:          l,
		coordWidth: coordWidth,
		mod:        new(big.Int).Lsh(big.NewInt(1), uint(l)),
		state:      make([]*big.Int, n),
	}
	for i := range v.state {
		v.state[i] = new(big.Int)
	}
	return v, nil
}

func (v *VectorHash) Hash(m Multiset) ([]byte, error) {
	v.Reset()
	for elem, mult := range m {
		v.absorb([]byte(elem), mult)
	}
	return v.Current(), nil
}

func (v *VectorHash) Update(elem []byte, mult uint64) ([]byte, error) {
	v.absorb(elem, mult)
	return v.Current(), nil
}

// absorb adds mult times the mapped vector of elem, coordinate-wise
// mod 2^l. Scaling each coordinate gives the same residues as mult
// repeated additions.
func (v *VectorHash) absorb(elem []byte, mult uint64) {
	scalar := new(big.Int).SetUint64(mult)
	term := new(big.Int)
	for i := 0; i < v.n; i++ {
		term.Mul(v.mapCoord(elem, uint32(i)), scalar)
		v.state[i].Add(v.state[i], term)
		v.state[i].Mod(v.state[i], v.mod)
	}
}

// mapCoord hashes elem with the coordinate index as a domain separation
// suffix and reduces the result mod 2^l. Coordinates wider than the
// hash output are expanded by using the hash as a chacha20 key.
func (v *VectorHash) mapCoord(elem []byte, idx uint32) *big.Int {
	var suffix [4]byte
	binary.BigEndian.PutUint32(suffix[:], idx)
	sum := unkeyedSum(tagVector, elem, suffix[:])

	c := new(big.Int)
	if v.coordWidth <= len(sum) {
		c.SetBytes(sum[:v.coordWidth])
	} else {
		var nonce [chacha20.NonceSize]byte
		stream, err := chacha20.NewUnauthenticatedCipher(sum[:], nonce[:])
		if err != nil {
			panic(err) // key and nonce sizes are constant
		}
		buf := make([]byte, v.coordWidth)
		stream.XORKeyStream(buf, buf)
		c.SetBytes(buf)
	}
	return c.Mod(c, v.mod)
}

func (v *VectorHash) Reset() {
	for _, c := range v.state {
		c.SetUint64(0)
	}
}

// Current concatenates the big-endian fixed-width encodings of the n
// coordinates, ceil(l/8) bytes each, leading zeros kept.
func (v *VectorHash) Current() []byte {
	out := make([]byte, 0, v.n*v.coordWidth)
	buf := make([]byte, v.coordWidth)
	for _, c := range v.state {
		c.FillBytes(buf)
		out = append(out, buf...)
	}
	return out
}
