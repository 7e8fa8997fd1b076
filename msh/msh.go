// Package msh implements incremental multiset hash functions: hashes of
// collections where element order does not matter and elements may
// repeat. Two accumulators that absorb the same elements with the same
// multiplicities produce identical digests, no matter the order of
// absorption or how the updates are batched.
//
// Four constructions are provided. XORHash and AddHash are keyed;
// MuHash and VectorHash are keyless and rely on computational hardness
// assumptions instead. XORHash is only set-collision resistant: an
// element absorbed an even number of times cancels out entirely. The
// other three are multiset-collision resistant under their respective
// assumptions.
package msh

import (
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// KeySize is the exact key length accepted by the keyed constructions.
const KeySize = 32

// Multiset maps element bytes to multiplicities. Entries with
// multiplicity zero contribute nothing to the digest.
type Multiset map[string]uint64

// Accumulator is the lifecycle contract shared by the four
// constructions. An accumulator is not safe for concurrent use; callers
// sharing one across goroutines must serialize access themselves.
type Accumulator interface {
	// Hash resets the accumulator to identity, absorbs every
	// (element, multiplicity) pair in m, and returns the digest. The
	// accumulator keeps the resulting state, so further Update calls
	// continue from it.
	Hash(m Multiset) ([]byte, error)
	// Update absorbs one (element, multiplicity) pair into the running
	// state and returns the new digest. A failed update leaves the
	// state unchanged.
	Update(elem []byte, mult uint64) ([]byte, error)
	// Reset returns the accumulator to the identity state.
	Reset()
	// Current returns the digest of the current state without mutating
	// it. The digest width is fixed by the construction parameters.
	Current() []byte
}

var (
	_ Accumulator = (*XORHash)(nil)
	_ Accumulator = (*AddHash)(nil)
	_ Accumulator = (*MuHash)(nil)
	_ Accumulator = (*VectorHash)(nil)
)

// Domain separation tags prepended to element bytes before hashing, so
// that no two constructions ever hash the same input.
const (
	tagXOR    = 0x01
	tagAdd    = 0x02
	tagMu     = 0x03
	tagVector = 0x04
)

// keyedHasher holds a keyed blake2b-256 instance that is reset and
// reused across elements, so absorbing an element does not allocate a
// fresh hasher. Sharing the instance is safe because accumulators are
// single-threaded by contract.
type keyedHasher struct {
	h   hash.Hash
	tag [1]byte
}

func newKeyedHasher(key []byte, tag byte) (*keyedHasher, error) {
	if len(key) != KeySize {
		return nil, KeySizeError(len(key))
	}
	h, err := blake2b.New256(key)
	if err != nil {
		panic(err) // key length checked above
	}
	return &keyedHasher{h: h, tag: [1]byte{tag}}, nil
}

// sum computes the keyed blake2b-256 hash of the tagged element.
func (k *keyedHasher) sum(elem []byte) [blake2b.Size256]byte {
	k.h.Reset()
	k.h.Write(k.tag[:])
	k.h.Write(elem)
	var out [blake2b.Size256]byte
	k.h.Sum(out[:0])
	return out
}

// hasherPool reuses unkeyed blake2b-256 instances for the keyless
// element mappings of the multiplicative and vector constructions.
var hasherPool = sync.Pool{
	New: func() interface{} {
		h, _ := blake2b.New256(nil) // this fn never returns error when key=nil
		return h
	},
}

// unkeyedSum computes the blake2b-256 hash of the tagged element,
// optionally followed by extra suffix bytes.
func unkeyedSum(tag byte, elem, suffix []byte) [blake2b.Size256]byte {
	h := hasherPool.Get().(hash.Hash)
	defer hasherPool.Put(h)
	h.Reset()
	h.Write([]byte{tag})
	h.Write(elem)
	h.Write(suffix)
	var out [blake2b.Size256]byte
	h.Sum(out[:0])
	return out
}
