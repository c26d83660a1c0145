package vmcheck

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Push_Pop(t *testing.T) {
	lines := []string{
		"push argument 1",
		"push local 2",
		"push static 1",
		"push constant 32767",
		"push this 1",
		"push that 2",
		"push pointer 1",
		"push temp 7",
		"pop argument 1",
		"pop local 2",
		"pop static 1",
		"pop this 1",
		"pop that 2",
		"pop pointer 0",
		"pop temp 0",
	}
	checker := NewChecker()
	checker.reset()
	checker.currentFunction = "Main.main"
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.Nil(t, err, l)
	}
}

func TestChecker_Bad_Lines(t *testing.T) {
	lines := []string{
		"pop constant 1",
		"push pointer 2",
		"push temp 8",
		"push constant 32768",
		"push local -1",
		"push local",
		"push heap 1",
		"PUSH local 1",
		"add 1",
		"label 1abc",
		"goto a-b",
		"call Main.f",
		"jump",
	}
	checker := NewChecker()
	checker.reset()
	checker.currentFunction = "Main.main"
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.True(t, errors.Is(err, ErrSyntax), l)
	}
}

func TestChecker_Arithmetic_Commands(t *testing.T) {
	lines := []string{"add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not", "return // done"}
	checker := NewChecker()
	checker.reset()
	checker.currentFunction = "Main.main"
	for _, l := range lines {
		err := checker.parseLine([]byte(l))
		assert.Nil(t, err, l)
	}
}

func TestChecker_Check(t *testing.T) {
	testData := []struct {
		listing string
		errs    int
	}{
		{
			listing: "function Main.main 0\nlabel WHILE_EXP0\npush constant 0\nif-goto WHILE_END0\n" +
				"goto WHILE_EXP0\nlabel WHILE_END0\npush constant 0\nreturn",
			errs: 0,
		},
		{
			listing: "// comment\n\nfunction Main.f 1\ncall Math.multiply 2\nreturn\n",
			errs:    0,
		},
		{
			listing: "push constant 0\n",
			errs:    1,
		},
		{
			// Labels don't cross function boundaries.
			listing: "function A.f 0\nlabel L\nreturn\nfunction A.g 0\ngoto L\nreturn\n",
			errs:    1,
		},
		{
			listing: "function A.f 0\nlabel L\nlabel L\ngoto M\nreturn\n",
			errs:    2,
		},
		{
			listing: "function A.f x\npop constant 0\nfoo\n",
			errs:    3,
		},
	}
	for _, data := range testData {
		err := Check(strings.NewReader(data.listing))
		if data.errs == 0 {
			assert.Nil(t, err, data.listing)
			continue
		}
		var merr *multierror.Error
		require.True(t, errors.As(err, &merr), data.listing)
		assert.Equal(t, data.errs, len(merr.Errors), data.listing)
	}
}

func TestChecker_Undefined_Label(t *testing.T) {
	err := Check(strings.NewReader("function A.f 0\nif-goto IF_TRUE0\nreturn\n"))
	assert.True(t, errors.Is(err, ErrUndefinedLabel))
	assert.Contains(t, err.Error(), "IF_TRUE0")
}
