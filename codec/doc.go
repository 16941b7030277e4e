// Package codec defines leaf conversions between Go values and encoded
// trees, and the registries the mapper consults for them.
//
// A Codec handles exactly one subject type (or, for interface subjects,
// every type implementing it). Codecs are looked up by type, never by
// name:
//
//	reg := codec.Standard()
//	if err := reg.Register(codec.Text[semver.Version]()); err != nil {
//	    ...
//	}
//
// Lookup walks codecs in registration order and returns the first whose
// subject the requested type is assignable to. Merge puts one registry in
// front of another, which is how per-record codecs take precedence over
// the mapper's codecs.
package codec
