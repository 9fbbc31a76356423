// Package mapc drives the external level compilers.
//
// A map is compiled by running the geometry (qbsp), lighting (light) and
// visibility (vis) tools in that order inside the map directory, each given
// "<name>.map". Any non-zero exit aborts the map. On success "<name>.bsp" is
// copied into the asset directory, where the bundler picks it up.
//
// Batches compile each map independently: a failing map never rolls back
// maps that were already copied.
package mapc
