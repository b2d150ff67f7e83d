// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/websocat-api/src/classes.rs and
// get_all_cli_options.rs
//

package patchbay

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// NodeClass is the metadata record describing one kind of node a textual
// tree may instantiate.
//
// A class is identified by its [NodeClass.Name]; names beginning with "."
// are soft-hidden from help listings but otherwise behave normally.
type NodeClass interface {
	// Name is the class's official name, as it appears after the opening
	// bracket in a textual tree node, e.g. "tcp-listen".
	Name() string

	// Properties lists every property this class accepts.
	Properties() []PropertyInfo

	// Array describes the positional array element this class accepts, or
	// returns nil if the class does not accept positional elements.
	Array() *ArrayInfo

	// NewBuilder returns a fresh, empty [NodeBuilder] for this class.
	NewBuilder() NodeBuilder
}

// Hidden reports whether name is soft-hidden from help listings.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// NodeBuilder is the transient, mutable accumulator [Build] uses while
// constructing one node from a textual tree element.
//
// A builder type-checks each call against the owning class's schema; a
// mismatch (unknown property, wrong type, array pushed on a
// non-array-accepting class) is reported as a [SchemaError] either
// immediately or at [NodeBuilder.Finish].
type NodeBuilder interface {
	// SetProperty assigns value to the named property.
	SetProperty(name string, value Value) error

	// PushArrayElement appends value to the class's positional array, if
	// the class accepts one.
	PushArrayElement(value Value) error

	// Validate runs the class-specific validation hook, if any. It may set
	// additional defaulted fields on the builder and may fail with a
	// [ValidationError].
	Validate() error

	// Finish produces the immutable [DataNode]. After Finish succeeds the
	// builder must not be reused.
	Finish() (DataNode, error)
}

// DataNode is a read-only configured node, the result of running a
// [NodeBuilder] to completion.
//
// A DataNode may be purely data (in which case [DataNode.AsRunnable]
// returns ok=false) or may additionally implement [RunnableNode].
type DataNode interface {
	// Class returns the official name of the node's class.
	Class() string

	// Property returns the value set for the named property, if any.
	Property(name string) (Value, bool)

	// ArrayElements returns the node's positional array elements, in the
	// order they were pushed (textual elements first, then CLI-appended
	// ones).
	ArrayElements() []Value

	// AsRunnable reports whether this node implements [RunnableNode] and,
	// if so, returns it.
	AsRunnable() (RunnableNode, bool)
}

// RunnableNode is a [DataNode] that participates at runtime.
//
// Run must not block outside of cooperative suspension points (I/O reads,
// writes, connects, accepts, and timer waits); blocking work such as file
// I/O is handed to a goroutine and awaited through a channel.
//
// If multiconn is non-nil, a listening leaf that accepts one connection
// per call should accept the connection, stash the listening resource into
// the opaque resumption token, call multiconn.RequestAnotherSession with
// it, and return the Bipipe for the accepted connection; on a re-entrant
// call it must recover the listening resource from
// multiconn.ResumptionToken rather than rebind. If multiconn is nil, a
// listener must decline multi-accept and return only the single accepted
// connection. Overlay nodes propagate multiconn to exactly one child.
type RunnableNode interface {
	DataNode

	Run(ctx context.Context, rc *RunContext, multiconn *ServerModeContext) (Bipipe, error)
}

// classEntry holds one registered class; [Registry.CLIOptions] derives the
// class's CLI long options from its properties on demand.
type classEntry struct {
	class NodeClass
}

// Registry maps official class and macro names to their factories, and
// computes the flat table of CLI long options contributed by registered
// classes.
//
// Insertions never fail outright: registering a name a second time
// replaces the previous registration and logs the redefinition at Info
// level through the registry's [SLogger] (which has no warning level),
// following the textual tree's forgiving stance on
// redefinition. The registry itself becomes immutable the moment building
// starts; classes do not keep process-wide mutable state of their own.
type Registry struct {
	classes map[string]classEntry
	macros  map[string]Macro
	logger  SLogger
}

// NewRegistry returns an empty [*Registry] that logs duplicate
// registrations through logger. If logger is nil, [DefaultSLogger] is used.
func NewRegistry(logger SLogger) *Registry {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Registry{
		classes: make(map[string]classEntry),
		macros:  make(map[string]Macro),
		logger:  logger,
	}
}

// RegisterClass adds class to the registry under class.Name(). A prior
// registration under the same name is replaced and the redefinition is
// logged at Info level.
func (r *Registry) RegisterClass(class NodeClass) {
	name := class.Name()
	if _, exists := r.classes[name]; exists {
		r.logger.Info("patchbay: class redefined, last registration wins", "class", name)
	}
	r.classes[name] = classEntry{class: class}
}

// RegisterMacro adds macro to the registry under macro.Name(). A prior
// registration under the same name is replaced and the redefinition is
// logged at Info level.
func (r *Registry) RegisterMacro(macro Macro) {
	name := macro.Name()
	if _, exists := r.macros[name]; exists {
		r.logger.Info("patchbay: macro redefined, last registration wins", "macro", name)
	}
	r.macros[name] = macro
}

// LookupClass returns the class registered under name, if any.
func (r *Registry) LookupClass(name string) (NodeClass, bool) {
	entry, ok := r.classes[name]
	if !ok {
		return nil, false
	}
	return entry.class, true
}

// LookupMacro returns the macro registered under name, if any.
func (r *Registry) LookupMacro(name string) (Macro, bool) {
	m, ok := r.macros[name]
	return m, ok
}

// ClassNames returns every registered class name in sorted order.
func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CLIOption describes one long option contributed to the flat CLI option
// table by a class's scalar property or array.
type CLIOption struct {
	// LongOption is the option name without leading dashes.
	LongOption string

	// Class is the name of the contributing class.
	Class string

	// Property is the property name the option sets, or "" if the option
	// feeds the class's positional array.
	Property string

	// Type is the value type the option's argument must parse as.
	Type ValueType

	// IsArray reports whether the option appends to an array (true) or
	// overwrites a scalar (false).
	IsArray bool
}

// CLIOptions computes the flat table of CLI long options contributed by
// every registered class. Two classes registering the same long option
// with incompatible types (scalar vs array, or differing value types) is
// a fatal configuration error, surfaced before any session runs.
func (r *Registry) CLIOptions() ([]CLIOption, error) {
	byName := make(map[string]CLIOption)
	var opts []CLIOption
	for _, name := range r.ClassNames() {
		class := r.classes[name].class
		for _, p := range class.Properties() {
			if p.CLILongOption == "" {
				continue
			}
			opt := CLIOption{LongOption: p.CLILongOption, Class: name, Property: p.Name, Type: p.Type}
			if prior, exists := byName[opt.LongOption]; exists {
				if prior.Type != opt.Type || prior.IsArray != opt.IsArray {
					return nil, fmt.Errorf(
						"patchbay: CLI option --%s registered incompatibly by %q and %q",
						opt.LongOption, prior.Class, opt.Class,
					)
				}
			}
			byName[opt.LongOption] = opt
			opts = append(opts, opt)
		}
		if arr := class.Array(); arr != nil && arr.CLILongOption != "" {
			opt := CLIOption{LongOption: arr.CLILongOption, Class: name, Type: arr.Type, IsArray: true}
			if prior, exists := byName[opt.LongOption]; exists {
				if prior.Type != opt.Type || prior.IsArray != opt.IsArray {
					return nil, fmt.Errorf(
						"patchbay: CLI option --%s registered incompatibly by %q and %q",
						opt.LongOption, prior.Class, opt.Class,
					)
				}
			}
			byName[opt.LongOption] = opt
			opts = append(opts, opt)
		}
	}
	return opts, nil
}
