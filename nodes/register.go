// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import "github.com/bassosimone/patchbay"

// RegisterAll registers every concrete node class this package ships into
// reg, using cfg to pre-wire dialers, loggers, and error classifiers.
func RegisterAll(reg *patchbay.Registry, cfg *patchbay.Config) {
	reg.RegisterClass(mockReadClass)
	reg.RegisterClass(mockWriteClass)
	reg.RegisterClass(literalClass)

	reg.RegisterClass(newTCPListenClass(cfg))
	reg.RegisterClass(newTCPConnectClass(cfg))

	reg.RegisterClass(newUDPListenClass(cfg))
	reg.RegisterClass(newUDPConnectClass(cfg))

	reg.RegisterClass(newReadFileClass(cfg))
	reg.RegisterClass(newWriteFileClass(cfg))

	reg.RegisterClass(newHTTPServeClass(cfg))
	reg.RegisterClass(newHTTPConnectClass(cfg))

	reg.RegisterClass(newTLSClientClass(cfg))
	reg.RegisterClass(newWSUpgradeClass(cfg))
	reg.RegisterClass(newWSConnectClass(cfg))
	reg.RegisterClass(newLengthPrefixedClass())
	reg.RegisterClass(newLineClass())
	reg.RegisterClass(newReuserClass())
	reg.RegisterClass(newBroadcastReuserClass())
	reg.RegisterClass(newTeeClass())

	reg.RegisterClass(newSessionClass())
}
