package rmperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFatal_CallsExitFuncWithNonzeroStatus(t *testing.T) {
	var gotCode int
	called := false
	restore := WithExitFunc(func(code int) {
		called = true
		gotCode = code
	})
	defer restore()

	Fatal("test-component", errors.New("boom"))

	require.True(t, called, "expected exit func to be called")
	assert.Equal(t, 1, gotCode)
}

func TestFatalMsg_TerminatesLikeFatal(t *testing.T) {
	var gotCode int
	restore := WithExitFunc(func(code int) { gotCode = code })
	defer restore()

	FatalMsg("test-component", "expected %d, got %d", 4, 3)

	assert.Equal(t, 1, gotCode)
}

func TestViolation_ErrorIncludesComponentAndMessage(t *testing.T) {
	v := NewViolation("pool", "expected %d jobs, got %d", 4, 3)
	require.Equal(t, "pool: expected 4 jobs, got 3", v.Error())
}
