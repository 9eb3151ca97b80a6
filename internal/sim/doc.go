// Package sim runs a state-space model over an input sequence.
//
// The recurrence is strictly sequential: x[t] depends on x[t-1], so a run is
// a single loop on the calling goroutine. A [Simulator] is not safe for
// concurrent use; build one per goroutine.
package sim
