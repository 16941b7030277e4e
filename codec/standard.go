package codec

import (
	"net/netip"
	"time"
)

// Standard returns a new registry with codecs for common value types:
//
//   - time.Time as DateTime in UTC
//   - *url.URL as text
//   - netip.Addr, netip.AddrPort and netip.Prefix as text
//
// Each call returns a distinct registry; callers may append to it.
func Standard() *Registry {
	return MustRegistry(
		DateTime(time.UTC),
		URL(),
		Text[netip.Addr](),
		Text[netip.AddrPort](),
		Text[netip.Prefix](),
	)
}
