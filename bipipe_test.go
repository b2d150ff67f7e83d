// SPDX-License-Identifier: GPL-3.0-or-later

package patchbay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapesCompatibleTruthTable(t *testing.T) {
	cases := []struct {
		a, b Shape
		want bool
	}{
		{ShapeByteStream, ShapeByteStream, true},
		{ShapeDatagram, ShapeDatagram, true},
		{ShapeHTTP, ShapeHTTP, true},
		{ShapeNone, ShapeByteStream, true},
		{ShapeByteStream, ShapeNone, true},
		{ShapeNone, ShapeNone, true},
		{ShapeByteStream, ShapeDatagram, false},
		{ShapeDatagram, ShapeHTTP, false},
		{ShapeByteStream, ShapeHTTP, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, shapesCompatible(c.a, c.b), "%v vs %v", c.a, c.b)
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "none", ShapeNone.String())
	assert.Equal(t, "bytestream", ShapeByteStream.String())
	assert.Equal(t, "datagram", ShapeDatagram.String())
	assert.Equal(t, "http", ShapeHTTP.String())
}

func TestExchangeBagSetGet(t *testing.T) {
	bag := NewExchangeBag()
	_, ok := bag.Get("missing")
	assert.False(t, ok)

	bag.Set("client-ip", NewStringValue("1.2.3.4"))
	v, ok := bag.Get("client-ip")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "1.2.3.4", s)
}

func TestRunContextFillInRole(t *testing.T) {
	bag := NewExchangeBag()
	rc := NewFillInRunContext(nil, bag)

	err := rc.SetExchange("key", NewStringValue("value"))
	require.NoError(t, err)

	v, ok := rc.GetExchange("key")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "value", s)
}

func TestRunContextReadFromRoleCannotSet(t *testing.T) {
	bag := NewExchangeBag()
	bag.Set("key", NewStringValue("value"))
	rc := NewReadFromRunContext(nil, bag)

	err := rc.SetExchange("other", NewStringValue("x"))
	assert.Error(t, err)

	// Reading is still allowed from the read-from role.
	v, ok := rc.GetExchange("key")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "value", s)
}

func TestRunContextAbsentExchangeNeverBlocks(t *testing.T) {
	rc := NewReadFromRunContext(nil, nil)
	_, ok := rc.GetExchange("anything")
	assert.False(t, ok)

	rc2 := NewFillInRunContext(nil, nil)
	err := rc2.SetExchange("anything", NewStringValue("x"))
	assert.Error(t, err)
}

func TestServerModeContextRequestAnotherSession(t *testing.T) {
	var requested Opaque
	var called bool
	smc := NewServerModeContext(nil, func(token Opaque) {
		called = true
		requested = token
	})

	smc.RequestAnotherSession("resume-me")
	assert.True(t, called)
	assert.Equal(t, "resume-me", requested)
}
