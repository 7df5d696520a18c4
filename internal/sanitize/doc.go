// Package sanitize patches known non-portable runtime helpers out of
// compiler output. Each Rule is an exact substring match; a rule whose
// pattern is absent leaves the text untouched.
//
// The patterns mirror the helper code Babel currently emits. When the
// compiler changes its helper output, the rules stop matching and the
// pipeline logs the miss at debug level.
package sanitize
