package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVMWriter_String(t *testing.T) {
	writer := NewVMWriter()
	writer.WriteFunction("Main.main", 2)
	writer.WritePush(ConstantSegment, 7)
	writer.WritePop(LocalSegment, 1)
	writer.WriteArithmetic(NegCommand)
	writer.WriteLabel("WHILE_EXP0")
	writer.WriteIf("WHILE_END0")
	writer.WriteGoto("WHILE_EXP0")
	writer.WriteCall("Math.multiply", 2)
	writer.WriteReturn()
	expected := `function Main.main 2
push constant 7
pop local 1
neg
label WHILE_EXP0
if-goto WHILE_END0
goto WHILE_EXP0
call Math.multiply 2
return
`
	assert.Equal(t, expected, writer.String())
	assert.Equal(t, 9, writer.Len())

	buf := &bytes.Buffer{}
	n, err := writer.WriteTo(buf)
	assert.Nil(t, err)
	assert.Equal(t, int64(len(expected)), n)
	assert.Equal(t, expected, buf.String())
}

func TestVMWriter_Instructions(t *testing.T) {
	writer := NewVMWriter()
	writer.WritePush(ThatSegment, 0)
	instructions := writer.Instructions()
	assert.Equal(t, []Instruction{{Op: PushOp, Segment: ThatSegment, Index: 0}}, instructions)
	// The returned slice is a copy.
	instructions[0].Index = 5
	assert.Equal(t, "push that 0", writer.Instructions()[0].String())
	assert.Equal(t, "", NewVMWriter().String())
}
