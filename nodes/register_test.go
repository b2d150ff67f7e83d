// SPDX-License-Identifier: GPL-3.0-or-later

package nodes

import (
	"testing"

	"github.com/bassosimone/patchbay"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAllRegistersEveryClass(t *testing.T) {
	reg := patchbay.NewRegistry(nil)
	RegisterAll(reg, patchbay.NewConfig())

	want := []string{
		"mock-read", "mock-write", "literal",
		"tcp-listen", "tcp-connect",
		"udp-listen", "udp-connect",
		"readfile", "writefile",
		"http-serve", "http-connect",
		"tls-connect", "ws-upgrade", "ws-connect",
		"length-prefixed", "line", "reuse", "broadcast", "tee",
		"session",
	}
	for _, name := range want {
		_, ok := reg.LookupClass(name)
		assert.True(t, ok, "expected class %q to be registered", name)
	}
}

func TestRegisterAllCLIOptionsHaveNoConflicts(t *testing.T) {
	reg := patchbay.NewRegistry(nil)
	RegisterAll(reg, patchbay.NewConfig())

	_, err := reg.CLIOptions()
	assert.NoError(t, err)
}
