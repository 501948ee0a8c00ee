// Package idgen wraps the UUID and token generators so that they can be
// stubbed in tests. It lives under `internal` because callers should not rely
// on its exact behaviour or API – they should treat identifiers and tokens as
// opaque strings.
package idgen
