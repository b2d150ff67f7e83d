// SPDX-License-Identifier: GPL-3.0-or-later

package errclass_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/bassosimone/patchbay/errclass"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, "", errclass.New(nil))
	assert.Equal(t, errclass.ETIMEDOUT, errclass.New(context.DeadlineExceeded))
	assert.Equal(t, errclass.ECANCELED, errclass.New(context.Canceled))
	assert.Equal(t, errclass.ECLOSED, errclass.New(net.ErrClosed))
	assert.Equal(t, errclass.EGENERIC, errclass.New(errors.New("some unclassified error")))
}

func TestNewWrapped(t *testing.T) {
	wrapped := &net.OpError{Op: "dial", Err: context.DeadlineExceeded}
	assert.Equal(t, errclass.ETIMEDOUT, errclass.New(wrapped))
}
