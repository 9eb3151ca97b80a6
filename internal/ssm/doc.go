// Package ssm defines discrete-time linear state-space models and a random
// generator for them.
//
// A model is the triple (A, B, C) stored as gonum dense matrices:
//
//   - A (N×N) maps the previous hidden state to the next one
//   - B (N×1) maps the scalar input into the state
//   - C (1×N) reads the scalar output from the state
//
// # Example
//
//	src := prng.NewThreefry(0)
//	m, err := ssm.Random(src, 4)
//
// Simulation lives in package sim.
package ssm
