// Package format applies whitespace and quote style to Python source.
//
// The passes are lexical and loss-free: they touch blank lines,
// trailing whitespace, string quote characters, and trailing commas,
// and never anything inside a string literal. Input and output are
// LF-normalized text; the byte-level encoding round trip is owned by
// internal/source.
package format
