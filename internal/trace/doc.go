// Package trace records what an assetforge run did in a canonical,
// reproducible form.
//
// A trace is observational only: recording never changes bundling or
// compilation behavior, and a failing sink cannot fail a run.
package trace
