// Package analysis provides post-run tools for simulated trajectories.
//
//   - [PowerSpectrum]: magnitude spectrum of an output sequence
//   - [DominantBin]: strongest non-DC frequency bin
//   - [PhasePortrait]: two hidden-state components plotted against each other
//
// # Example
//
//	ps := analysis.PowerSpectrum(result.Y)
//	bin := analysis.DominantBin(ps)
//	freq := analysis.BinFrequency(bin, len(result.Y))
package analysis
