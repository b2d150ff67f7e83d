// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/crates/websocat-api/src/properties.rs
//

package patchbay

// PropertyInfo describes one property a [NodeClass] accepts.
//
// A class publishes its full property list at construction time; the
// builder uses this list to type-check `set_property` calls and the CLI
// option table uses it to decide how a long option's value should be
// parsed and merged.
type PropertyInfo struct {
	// Name is the property's key as it appears in a textual tree, e.g.
	// "addrs" or "uri".
	Name string

	// Help is a short human-readable description, shown in CLI help output.
	Help string

	// Type is the property's declared [ValueType].
	Type ValueType

	// CLILongOption is the long option name (without leading dashes) that,
	// when present on the command line, sets or appends this property.
	// Empty if the property has no CLI-injected form.
	CLILongOption string

	// Required marks a property that must be set (either textually or via
	// CLI) before [NodeBuilder.Finish] succeeds.
	Required bool
}

// ArrayInfo describes the array element a [NodeClass] accepts via
// positional textual tree elements, if any.
type ArrayInfo struct {
	// Type is the declared element [ValueType].
	Type ValueType

	// Help is a short human-readable description of the array's purpose.
	Help string

	// CLILongOption is the long option name that appends array elements
	// from the command line. Empty if the array has no CLI-injected form.
	CLILongOption string
}
