// Package prng provides deterministic, splittable random sources.
//
// The default source is Threefry-2x32 with a counter layout that matches
// JAX's classic key handling, so that
//
//	k := prng.NewKey(0)
//	keys := k.Split(3)
//
// yields the same child keys and uniform draws as jax.random.PRNGKey(0)
// followed by jax.random.split and jax.random.uniform with float32 output.
//
// A [PCG] source backed by math/rand/v2 is available for callers that do not
// need that compatibility.
package prng
