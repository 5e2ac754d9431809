package queue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBusyGroupErr(t *testing.T) {
	assert.False(t, isBusyGroupErr(nil))
	assert.False(t, isBusyGroupErr(errors.New("connection refused")))

	// XGROUP CREATE on an existing group answers with this error text.
	assert.True(t, isBusyGroupErr(errors.New("BUSYGROUP Consumer Group name already exists")))
	assert.True(t, isBusyGroupErr(errors.New("busygroup consumer group name already exists")))
}
