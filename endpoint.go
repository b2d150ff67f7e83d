// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import "net/netip"

// NewEndpointFunc returns a [Func] that always returns the given [netip.AddrPort].
//
// tcp-connect parses its "addr" property once at run time
// and use this to seed the rest of the dial pipeline with that fixed
// endpoint, via [ConstFunc].
func NewEndpointFunc(endpoint netip.AddrPort) Func[Unit, netip.AddrPort] {
	return ConstFunc(endpoint)
}
