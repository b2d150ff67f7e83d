// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/src/specparse.rs (macro expansion)
//

package patchbay

import "github.com/bassosimone/patchbay/patchtree"

// MaxMacroExpansions bounds the number of fixed-point rounds
// [ExpandMacros] will run before giving up with [ErrMacroExpansionLoop].
const MaxMacroExpansions = 64

// Macro is a tree-to-tree rewrite applied before the builder runs.
//
// A macro cannot observe [DataNode] values: it only ever sees and produces
// syntax, which keeps macro expansion entirely independent of class
// construction and lets it run as a pure pre-pass over the parsed tree.
type Macro interface {
	// Name is the macro's official name, matched against a syntax node's
	// identifier the same way a class name would be.
	Name() string

	// Run rewrites node, returning its replacement. cliOpts carries the raw
	// CLI option bag so a macro may condition its expansion on flags set on
	// the command line.
	Run(node *patchtree.Node, cliOpts CLIOpts) (*patchtree.Node, error)
}

// CLIOpts is the raw bag of CLI-supplied option values, keyed by long
// option name, collected before [ExpandMacros] or [Build] runs.
//
// Each value is the raw textual argument(s) given on the command line;
// [Build] parses them against the declared [ValueType] once it knows which
// property or array each long option is bound to.
type CLIOpts map[string][]string

// ExpandMacros walks tree depth-first, replacing any syntax node whose
// name matches a macro registered in reg with that macro's output, until a
// fixed point is reached or [MaxMacroExpansions] rounds have run.
//
// Macros may be nested: a macro's output may itself contain nodes whose
// names match other (or the same) macros, which the next round expands.
func ExpandMacros(tree *patchtree.Node, reg *Registry, cliOpts CLIOpts) (*patchtree.Node, error) {
	current := tree
	for round := 0; round < MaxMacroExpansions; round++ {
		next, changed, err := expandOnce(current, reg, cliOpts)
		if err != nil {
			return nil, err
		}
		if !changed {
			return next, nil
		}
		current = next
	}
	return nil, ErrMacroExpansionLoop
}

// expandOnce performs a single depth-first pass, expanding every node
// whose name matches a registered macro exactly once, and reports whether
// any expansion occurred.
func expandOnce(node *patchtree.Node, reg *Registry, cliOpts CLIOpts) (*patchtree.Node, bool, error) {
	changed := false

	elements := make([]patchtree.Element, len(node.Elements))
	for i, el := range node.Elements {
		if el.Value.IsNode {
			expanded, elChanged, err := expandOnce(el.Value.Node, reg, cliOpts)
			if err != nil {
				return nil, false, err
			}
			elements[i] = patchtree.Element{Key: el.Key, Value: patchtree.ElementValue{IsNode: true, Node: expanded}}
			changed = changed || elChanged
		} else {
			elements[i] = el
		}
	}

	rebuilt := &patchtree.Node{Name: node.Name, Elements: elements}

	macro, ok := reg.LookupMacro(node.Name)
	if !ok {
		return rebuilt, changed, nil
	}
	expanded, err := macro.Run(rebuilt, cliOpts)
	if err != nil {
		return nil, false, err
	}
	return expanded, true, nil
}
