// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: _examples/original_source/crates/websocat-api/src/properties.rs
//

package patchbay

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// ValueType is the closed set of property value types a [NodeClass] can
// declare for a property or for its array element type.
//
// Every type but [ValueChildNode] has a canonical string parser (see
// [ValueType.Parse]) that turns a textual-tree element into a [Value] of
// the matching variant. [ValueChildNode] values cannot be parsed from flat
// strings — they only ever come from nested sub-trees during [Build].
type ValueType int

// The closed set of property value types.
const (
	ValueStringy ValueType = iota
	ValueBytesBuffer
	ValueEnummy
	ValueNumbery
	ValueFloaty
	ValueBooly
	ValueSockAddr
	ValueIpAddr
	ValuePortNumber
	ValuePath
	ValueUri
	ValueDuration
	ValueOsString
	ValueChildNode
)

// Tag returns the short display tag used in help output (e.g. "string",
// "bytes", "subnode").
func (t ValueType) Tag() string {
	switch t {
	case ValueStringy:
		return "string"
	case ValueBytesBuffer:
		return "bytes"
	case ValueEnummy:
		return "enum"
	case ValueNumbery:
		return "number"
	case ValueFloaty:
		return "float"
	case ValueBooly:
		return "bool"
	case ValueSockAddr:
		return "sockaddr"
	case ValueIpAddr:
		return "ipaddr"
	case ValuePortNumber:
		return "portnumber"
	case ValuePath:
		return "path"
	case ValueUri:
		return "uri"
	case ValueDuration:
		return "duration"
	case ValueOsString:
		return "osstring"
	case ValueChildNode:
		return "subnode"
	default:
		return "unknown"
	}
}

// String implements [fmt.Stringer].
func (t ValueType) String() string {
	return t.Tag()
}

// Value is a tagged union over the closed set of [ValueType] variants.
//
// A tagged struct (rather than a Go `any`) keeps every call site that reads
// a property honest: readers must go through the As* accessors, which
// return ok=false on a type mismatch instead of panicking, letting callers
// turn the mismatch into a [SchemaError].
type Value struct {
	typ   ValueType
	s     string
	b     []byte
	enum  string
	num   int64
	flt   float64
	boo   bool
	addr  net.Addr
	ip    net.IP
	port  uint16
	dur   time.Duration
	uri   *url.URL
	child NodeID
}

// Type returns the value's [ValueType].
func (v Value) Type() ValueType { return v.typ }

// NewStringValue constructs a [ValueStringy] value.
func NewStringValue(s string) Value { return Value{typ: ValueStringy, s: s} }

// NewBytesValue constructs a [ValueBytesBuffer] value.
func NewBytesValue(b []byte) Value { return Value{typ: ValueBytesBuffer, b: b} }

// NewEnumValue constructs a [ValueEnummy] value.
func NewEnumValue(tag string) Value { return Value{typ: ValueEnummy, enum: tag} }

// NewNumberValue constructs a [ValueNumbery] value.
func NewNumberValue(n int64) Value { return Value{typ: ValueNumbery, num: n} }

// NewFloatValue constructs a [ValueFloaty] value.
func NewFloatValue(f float64) Value { return Value{typ: ValueFloaty, flt: f} }

// NewBoolValue constructs a [ValueBooly] value.
func NewBoolValue(b bool) Value { return Value{typ: ValueBooly, boo: b} }

// NewSockAddrValue constructs a [ValueSockAddr] value.
func NewSockAddrValue(a net.Addr) Value { return Value{typ: ValueSockAddr, addr: a} }

// NewIPAddrValue constructs a [ValueIpAddr] value.
func NewIPAddrValue(ip net.IP) Value { return Value{typ: ValueIpAddr, ip: ip} }

// NewPortNumberValue constructs a [ValuePortNumber] value.
func NewPortNumberValue(p uint16) Value { return Value{typ: ValuePortNumber, port: p} }

// NewPathValue constructs a [ValuePath] value.
func NewPathValue(p string) Value { return Value{typ: ValuePath, s: p} }

// NewURIValue constructs a [ValueUri] value.
func NewURIValue(u *url.URL) Value { return Value{typ: ValueUri, uri: u} }

// NewDurationValue constructs a [ValueDuration] value.
func NewDurationValue(d time.Duration) Value { return Value{typ: ValueDuration, dur: d} }

// NewOsStringValue constructs a [ValueOsString] value.
func NewOsStringValue(s string) Value { return Value{typ: ValueOsString, s: s} }

// NewChildNodeValue constructs a [ValueChildNode] value referencing id.
func NewChildNodeValue(id NodeID) Value { return Value{typ: ValueChildNode, child: id} }

// AsString returns the string for [ValueStringy], [ValuePath], or
// [ValueOsString] values.
func (v Value) AsString() (string, bool) {
	switch v.typ {
	case ValueStringy, ValuePath, ValueOsString:
		return v.s, true
	default:
		return "", false
	}
}

// AsBytes returns the buffer for a [ValueBytesBuffer] value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.typ != ValueBytesBuffer {
		return nil, false
	}
	return v.b, true
}

// AsEnum returns the symbolic tag for a [ValueEnummy] value.
func (v Value) AsEnum() (string, bool) {
	if v.typ != ValueEnummy {
		return "", false
	}
	return v.enum, true
}

// AsNumber returns the integer for a [ValueNumbery] value.
func (v Value) AsNumber() (int64, bool) {
	if v.typ != ValueNumbery {
		return 0, false
	}
	return v.num, true
}

// AsFloat returns the float for a [ValueFloaty] value.
func (v Value) AsFloat() (float64, bool) {
	if v.typ != ValueFloaty {
		return 0, false
	}
	return v.flt, true
}

// AsBool returns the boolean for a [ValueBooly] value.
func (v Value) AsBool() (bool, bool) {
	if v.typ != ValueBooly {
		return false, false
	}
	return v.boo, true
}

// AsSockAddr returns the address for a [ValueSockAddr] value.
func (v Value) AsSockAddr() (net.Addr, bool) {
	if v.typ != ValueSockAddr {
		return nil, false
	}
	return v.addr, true
}

// AsIPAddr returns the IP for a [ValueIpAddr] value.
func (v Value) AsIPAddr() (net.IP, bool) {
	if v.typ != ValueIpAddr {
		return nil, false
	}
	return v.ip, true
}

// AsPortNumber returns the port for a [ValuePortNumber] value.
func (v Value) AsPortNumber() (uint16, bool) {
	if v.typ != ValuePortNumber {
		return 0, false
	}
	return v.port, true
}

// AsURI returns the URL for a [ValueUri] value.
func (v Value) AsURI() (*url.URL, bool) {
	if v.typ != ValueUri {
		return nil, false
	}
	return v.uri, true
}

// AsDuration returns the duration for a [ValueDuration] value.
func (v Value) AsDuration() (time.Duration, bool) {
	if v.typ != ValueDuration {
		return 0, false
	}
	return v.dur, true
}

// AsChildNode returns the referenced [NodeID] for a [ValueChildNode] value.
func (v Value) AsChildNode() (NodeID, bool) {
	if v.typ != ValueChildNode {
		return 0, false
	}
	return v.child, true
}

// String implements [fmt.Stringer] for logging and diagnostics.
func (v Value) String() string {
	switch v.typ {
	case ValueStringy, ValuePath, ValueOsString:
		return v.s
	case ValueBytesBuffer:
		return fmt.Sprintf("%d bytes", len(v.b))
	case ValueEnummy:
		return v.enum
	case ValueNumbery:
		return fmt.Sprintf("%d", v.num)
	case ValueFloaty:
		return fmt.Sprintf("%g", v.flt)
	case ValueBooly:
		return fmt.Sprintf("%t", v.boo)
	case ValueSockAddr:
		return v.addr.String()
	case ValueIpAddr:
		return v.ip.String()
	case ValuePortNumber:
		return fmt.Sprintf("%d", v.port)
	case ValueUri:
		return v.uri.String()
	case ValueDuration:
		return v.dur.String()
	case ValueChildNode:
		return fmt.Sprintf("#%d", v.child)
	default:
		return "<invalid value>"
	}
}

// ParseValue parses s into a [Value] of the given type using the type's
// canonical string parser. [ValueChildNode] cannot be parsed this way and
// always returns a [SchemaError]; child values are only ever produced by
// [Build] from a nested sub-tree.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case ValueStringy:
		return NewStringValue(s), nil
	case ValueBytesBuffer:
		return NewBytesValue([]byte(s)), nil
	case ValueEnummy:
		return NewEnumValue(s), nil
	case ValueNumbery:
		var n int64
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid number: %v", s, err)}
		}
		return NewNumberValue(n), nil
	case ValueFloaty:
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid float: %v", s, err)}
		}
		return NewFloatValue(f), nil
	case ValueBooly:
		switch s {
		case "true", "1", "yes":
			return NewBoolValue(true), nil
		case "false", "0", "no":
			return NewBoolValue(false), nil
		default:
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid bool", s)}
		}
	case ValueSockAddr:
		addr, err := net.ResolveTCPAddr("tcp", s)
		if err != nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid socket address: %v", s, err)}
		}
		return NewSockAddrValue(addr), nil
	case ValueIpAddr:
		ip := net.ParseIP(s)
		if ip == nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid IP address", s)}
		}
		return NewIPAddrValue(ip), nil
	case ValuePortNumber:
		var n uint64
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n > 65535 {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid port number", s)}
		}
		return NewPortNumberValue(uint16(n)), nil
	case ValuePath:
		return NewPathValue(s), nil
	case ValueUri:
		u, err := url.Parse(s)
		if err != nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid URI: %v", s, err)}
		}
		return NewURIValue(u), nil
	case ValueDuration:
		d, err := time.ParseDuration(s)
		if err != nil {
			return Value{}, &SchemaError{Reason: fmt.Sprintf("%q is not a valid duration: %v", s, err)}
		}
		return NewDurationValue(d), nil
	case ValueOsString:
		return NewOsStringValue(s), nil
	case ValueChildNode:
		return Value{}, &SchemaError{Reason: "child-node properties cannot be parsed from a flat string"}
	default:
		return Value{}, &SchemaError{Reason: fmt.Sprintf("unknown value type %v", t)}
	}
}
