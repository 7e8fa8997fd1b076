package msh

import "fmt"

// KeySizeError is returned when a keyed construction is given a key
// that is not exactly KeySize bytes. A missing key is a zero-length key
// and is rejected like any other wrong length; an unkeyed XOR or
// additive accumulation is trivially forgeable.
type KeySizeError int

func (e KeySizeError) Error() string {
	return fmt.Sprintf("invalid key size %d, want %d", int(e), KeySize)
}

// ModulusError is returned when an additive accumulator is constructed
// with an unusable modulus.
type ModulusError struct {
	reason string
}

func (e ModulusError) Error() string {
	return "invalid modulus: " + e.reason
}

// PrimeError is returned when a multiplicative accumulator is
// constructed with a value that is not prime or is too small.
type PrimeError struct {
	reason string
}

func (e PrimeError) Error() string {
	return "invalid prime: " + e.reason
}

// ParameterError is returned when a vector accumulator is constructed
// with an invalid dimension or coordinate width.
type ParameterError struct {
	reason string
}

func (e ParameterError) Error() string {
	return "invalid parameters: " + e.reason
}

// MappingExhaustedError is returned when rejection sampling could not
// map an element into the multiplicative group within the retry cap.
// The acceptance probability per draw is close to one for any prime of
// a sane size, so this signals a misconfigured, too-small prime.
type MappingExhaustedError struct {
	Retries int
}

func (e MappingExhaustedError) Error() string {
	return fmt.Sprintf("no group element found for input after %d attempts", e.Retries)
}
