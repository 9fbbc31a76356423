// Package bundle packs binary asset files into a generated C source file.
//
// Each selected file becomes one named declaration whose literal holds the
// file's exact bytes. Output is reproducible:
//   - Files are selected by an extension allow-list.
//   - Files are processed in byte-wise lexicographic name order.
//   - Rendering happens in memory and the destination is replaced atomically.
//
// Two output profiles are supported (see Profile): an unsigned char array
// and a quoted string of \x escapes. Both decode to identical bytes.
package bundle
