package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/aclements/go-moremath/stats"
	"github.com/yangl1996/multiset-hash/msh"
	"github.com/yangl1996/soliton"
)

func main() {
	numElements := flag.Int("n", 10000, "number of distinct elements in the multiset")
	elementSize := flag.Int("s", 256, "size of each element in bytes")
	solitonK := flag.Uint64("k", 50, "parameter K of the soliton multiplicity distribution")
	seed := flag.Int64("seed", 1, "seed for the workload RNG")
	primeBits := flag.Int("p", 0, "generate a fresh group prime of this size for muhash, 0 to use the default prime")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	dist := soliton.NewSoliton(rng, *solitonK)

	fmt.Println("# generating workload:", *numElements, "elements of", *elementSize, "bytes")
	elems := make([][]byte, *numElements)
	mults := make([]uint64, *numElements)
	for i := range elems {
		elems[i] = make([]byte, *elementSize)
		rng.Read(elems[i])
		mults[i] = dist.Uint64()
	}

	key := make([]byte, msh.KeySize)
	rng.Read(key)
	xor, err := msh.NewXORHash(key)
	if err != nil {
		log.Fatalln("creating xor accumulator:", err)
	}
	add, err := msh.NewAddHash(key)
	if err != nil {
		log.Fatalln("creating additive accumulator:", err)
	}
	var mu *msh.MuHash
	if *primeBits == 0 {
		mu = msh.NewMuHash()
	} else {
		mu, err = msh.GenerateMuHash(*primeBits)
		if err != nil {
			log.Fatalln("creating multiplicative accumulator:", err)
		}
	}
	vec, err := msh.NewVectorHash(16, 16)
	if err != nil {
		log.Fatalln("creating vector accumulator:", err)
	}

	accs := []struct {
		name string
		acc  msh.Accumulator
	}{
		{"xor", xor},
		{"add", add},
		{"muhash", mu},
		{"vector", vec},
	}

	fmt.Println("# construction  digest  mean  stddev  p50  p99  (latency in us)")
	for _, c := range accs {
		sketch, err := ddsketch.NewDefaultDDSketch(0.01)
		if err != nil {
			log.Fatalln("creating latency sketch:", err)
		}
		s := stats.Sample{}
		c.acc.Reset()
		for i, e := range elems {
			start := time.Now()
			_, uerr := c.acc.Update(e, mults[i])
			lat := float64(time.Since(start).Microseconds())
			if uerr != nil {
				log.Fatalln("updating", c.name, "accumulator:", uerr)
			}
			sketch.Add(lat)
			s.Xs = append(s.Xs, lat)
		}
		sort.Float64s(s.Xs)
		s.Sorted = true
		q, err := sketch.GetValuesAtQuantiles([]float64{0.50, 0.99})
		if err != nil {
			log.Fatalln("reading latency quantiles:", err)
		}
		fmt.Println(c.name, len(c.acc.Current()), s.Mean(), s.StdDev(), q[0], q[1])
	}
}
