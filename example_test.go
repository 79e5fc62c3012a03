package forkrng_test

import (
	"fmt"

	forkrng "github.com/opd-ai/go-forkrng"
)

// Example of basic usage
func ExampleNewRng() {
	rng := forkrng.NewRng("initial seed")
	sub := rng.Fork("a convenient label to differentiate")

	for i := 0; i < 3; i++ {
		fmt.Printf("%016x\n", sub.Fork(i).Uint64())
	}
	// Output:
	// 6d54fd24aed32f22
	// 845bca4d0b5f2b8b
	// d079ebe26c215c5c
}

// Example of forking with a structured label
func ExampleGenerator_Fork() {
	type point struct{ X, Y int }

	rng := forkrng.NewRng("world")
	a := rng.Fork(point{10, 12}).Uint64()
	b := rng.Fork(point{10, 12}).Uint64()
	c := rng.Fork(point{12, 10}).Uint64()

	fmt.Println("same label, same value:", a == b)
	fmt.Println("different label, different value:", a != c)
	// Output:
	// same label, same value: true
	// different label, different value: true
}

// Example of drawing several values from one point
func ExampleGenerator_Next() {
	g := forkrng.NewRng("initial seed")

	var v uint64
	for i := 0; i < 3; i++ {
		v, g = g.Next()
		fmt.Printf("%016x\n", v)
	}
	// Output:
	// 0cec5373abe8dd85
	// dfbc573a3138421e
	// ba0379fb5b9030ed
}

// Example of handing a generator to math/rand/v2
func ExampleGenerator_Rand() {
	dice := forkrng.NewRng("game").Fork("dice").Rand()

	a := dice.IntN(6) + 1
	again := forkrng.NewRng("game").Fork("dice").Rand().IntN(6) + 1

	fmt.Println("reproducible:", a == again)
	// Output: reproducible: true
}

// Example of checkpointing a generator
func ExampleGenerator_MarshalBinary() {
	g := forkrng.NewRng("save me").Fork("level 3")

	state, err := g.MarshalBinary()
	if err != nil {
		panic(err)
	}

	var resumed forkrng.Rng
	if err := resumed.UnmarshalBinary(state); err != nil {
		panic(err)
	}

	fmt.Println("resumed equal:", resumed.Equal(g))
	// Output: resumed equal: true
}

// Example of the BLAKE2b family
func ExampleNewBlake2Rng() {
	g := forkrng.NewBlake2Rng("initial seed")
	fmt.Println(g.Family())
	// Output: blake2b
}
