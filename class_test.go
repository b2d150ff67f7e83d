// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookupClass(t *testing.T) {
	reg := NewRegistry(nil)
	c := &stubClass{name: "foo"}
	reg.RegisterClass(c)

	got, ok := reg.LookupClass("foo")
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, ok = reg.LookupClass("bar")
	assert.False(t, ok)
}

func TestRegistryDuplicateClassLastWins(t *testing.T) {
	reg := NewRegistry(nil)
	first := &stubClass{name: "foo", properties: []PropertyInfo{{Name: "a"}}}
	second := &stubClass{name: "foo", properties: []PropertyInfo{{Name: "b"}}}
	reg.RegisterClass(first)
	reg.RegisterClass(second)

	got, ok := reg.LookupClass("foo")
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestRegistryClassNamesSorted(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterClass(&stubClass{name: "zeta"})
	reg.RegisterClass(&stubClass{name: "alpha"})
	reg.RegisterClass(&stubClass{name: "mid"})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.ClassNames())
}

func TestHiddenClassPrefix(t *testing.T) {
	assert.True(t, Hidden(".internal"))
	assert.False(t, Hidden("public"))
}

func TestCLIOptionsFlattensAcrossClasses(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterClass(&stubClass{
		name:       "a",
		properties: []PropertyInfo{{Name: "x", Type: ValueStringy, CLILongOption: "a-x"}},
	})
	reg.RegisterClass(&stubClass{
		name:  "b",
		array: &ArrayInfo{Type: ValueNumbery, CLILongOption: "b-n"},
	})

	opts, err := reg.CLIOptions()
	require.NoError(t, err)
	require.Len(t, opts, 2)

	byOpt := make(map[string]CLIOption)
	for _, o := range opts {
		byOpt[o.LongOption] = o
	}
	assert.Equal(t, "a", byOpt["a-x"].Class)
	assert.False(t, byOpt["a-x"].IsArray)
	assert.True(t, byOpt["b-n"].IsArray)
}

func TestCLIOptionsConflictOnIncompatibleRedefinition(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterClass(&stubClass{
		name:       "a",
		properties: []PropertyInfo{{Name: "x", Type: ValueStringy, CLILongOption: "shared"}},
	})
	reg.RegisterClass(&stubClass{
		name:       "b",
		properties: []PropertyInfo{{Name: "y", Type: ValueNumbery, CLILongOption: "shared"}},
	})

	_, err := reg.CLIOptions()
	require.Error(t, err)
}

func TestCLIOptionsCompatibleRedefinitionIsFine(t *testing.T) {
	reg := NewRegistry(nil)
	reg.RegisterClass(&stubClass{
		name:       "a",
		properties: []PropertyInfo{{Name: "x", Type: ValueStringy, CLILongOption: "shared"}},
	})
	reg.RegisterClass(&stubClass{
		name:       "b",
		properties: []PropertyInfo{{Name: "y", Type: ValueStringy, CLILongOption: "shared"}},
	})

	opts, err := reg.CLIOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestRegistryMacroLookup(t *testing.T) {
	reg := NewRegistry(nil)
	m := &stubMacro{name: "shortcut"}
	reg.RegisterMacro(m)

	got, ok := reg.LookupMacro("shortcut")
	require.True(t, ok)
	assert.Equal(t, m, got)

	_, ok = reg.LookupMacro("missing")
	assert.False(t, ok)
}
