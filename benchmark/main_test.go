package main

import (
	"math/rand"
	"testing"

	"github.com/cespare/xxhash"
	"github.com/dchest/siphash"
	"github.com/yangl1996/multiset-hash/msh"
	"golang.org/x/crypto/blake2b"
)

const benchElementSize = 256

func benchElement() []byte {
	rng := rand.New(rand.NewSource(1))
	e := make([]byte, benchElementSize)
	rng.Read(e)
	return e
}

func benchKey() []byte {
	k := make([]byte, msh.KeySize)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func BenchmarkXORHashUpdate(b *testing.B) {
	acc, err := msh.NewXORHash(benchKey())
	if err != nil {
		b.Fatal(err)
	}
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc.Update(e, 1)
	}
}

func BenchmarkAddHashUpdate(b *testing.B) {
	acc, err := msh.NewAddHash(benchKey())
	if err != nil {
		b.Fatal(err)
	}
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc.Update(e, 1)
	}
}

func BenchmarkMuHashUpdate(b *testing.B) {
	acc := msh.NewMuHash()
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc.Update(e, 1)
	}
}

func BenchmarkVectorHashUpdate(b *testing.B) {
	acc, err := msh.NewVectorHash(16, 16)
	if err != nil {
		b.Fatal(err)
	}
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc.Update(e, 1)
	}
}

// Primitive baselines, for putting the accumulator numbers in context.

func BenchmarkBlake2b(b *testing.B) {
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		blake2b.Sum256(e)
	}
}

func BenchmarkSiphash(b *testing.B) {
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		siphash.Hash(3434234, 7656474568, e)
	}
}

func BenchmarkXXHash(b *testing.B) {
	e := benchElement()
	b.ReportAllocs()
	b.SetBytes(benchElementSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		xxhash.Sum64(e)
	}
}

func BenchmarkRawXORFold(b *testing.B) {
	var state [32]byte
	h := blake2b.Sum256(benchElement())
	b.ReportAllocs()
	b.SetBytes(32)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range state {
			state[j] ^= h[j]
		}
	}
}
