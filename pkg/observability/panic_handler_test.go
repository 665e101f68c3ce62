package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ErrorLevel, &buf)

	require.NotPanics(t, func() {
		defer RecoverPanic(logger, "sweep")
		panic("boom")
	})

	assert.Contains(t, buf.String(), "PANIC recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestMustRecover(t *testing.T) {
	run := func() (err error) {
		defer func() {
			err = MustRecover(recover())
		}()
		panic("hostile input")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostile input")

	assert.NoError(t, MustRecover(nil))
}
