// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

// Unit is a type not containing any value (analogous to an
// explicit `void` type in C and C++).
//
// A connect pipeline's first stage, [NewEndpointFunc], takes a Unit: there
// is nothing upstream of dialing the address a tcp-connect node was
// configured with.
type Unit struct{}
