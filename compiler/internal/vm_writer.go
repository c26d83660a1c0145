package internal

import (
	"fmt"
	"io"
	"strings"
)

// Segment is a named memory region of the vm.
type Segment string

const (
	ConstantSegment Segment = "constant"
	LocalSegment    Segment = "local"
	ArgumentSegment Segment = "argument"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
	StaticSegment   Segment = "static"
)

// Command is an arithmetic or logical vm command. They take their operands from
// the stack.
type Command string

const (
	AddCommand Command = "add"
	SubCommand Command = "sub"
	NegCommand Command = "neg"
	EqCommand  Command = "eq"
	GtCommand  Command = "gt"
	LtCommand  Command = "lt"
	AndCommand Command = "and"
	OrCommand  Command = "or"
	NotCommand Command = "not"
)

type Opcode int

const (
	PushOp Opcode = iota
	PopOp
	ArithmeticOp
	LabelOp
	GotoOp
	IfGotoOp
	CallOp
	FunctionOp
	ReturnOp
)

// Instruction is one vm command. Only the fields used by Op are set: Segment and
// Index for push/pop, Command for arithmetic, Name for labels and functions, and
// Index carries the argument or local count of call/function.
type Instruction struct {
	Op      Opcode
	Segment Segment
	Command Command
	Name    string
	Index   int
}

func (ins Instruction) String() string {
	switch ins.Op {
	case PushOp:
		return fmt.Sprintf("push %s %d", ins.Segment, ins.Index)
	case PopOp:
		return fmt.Sprintf("pop %s %d", ins.Segment, ins.Index)
	case ArithmeticOp:
		return string(ins.Command)
	case LabelOp:
		return "label " + ins.Name
	case GotoOp:
		return "goto " + ins.Name
	case IfGotoOp:
		return "if-goto " + ins.Name
	case CallOp:
		return fmt.Sprintf("call %s %d", ins.Name, ins.Index)
	case FunctionOp:
		return fmt.Sprintf("function %s %d", ins.Name, ins.Index)
	case ReturnOp:
		return "return"
	}
	return ""
}

// VMWriter collects the vm code of one class. Instructions are only ever appended.
type VMWriter struct {
	instructions []Instruction
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (writer *VMWriter) write(ins Instruction) {
	writer.instructions = append(writer.instructions, ins)
}

func (writer *VMWriter) WritePush(segment Segment, index int) {
	writer.write(Instruction{Op: PushOp, Segment: segment, Index: index})
}

func (writer *VMWriter) WritePop(segment Segment, index int) {
	writer.write(Instruction{Op: PopOp, Segment: segment, Index: index})
}

func (writer *VMWriter) WriteArithmetic(command Command) {
	writer.write(Instruction{Op: ArithmeticOp, Command: command})
}

func (writer *VMWriter) WriteLabel(label string) {
	writer.write(Instruction{Op: LabelOp, Name: label})
}

func (writer *VMWriter) WriteGoto(label string) {
	writer.write(Instruction{Op: GotoOp, Name: label})
}

func (writer *VMWriter) WriteIf(label string) {
	writer.write(Instruction{Op: IfGotoOp, Name: label})
}

func (writer *VMWriter) WriteCall(name string, nArgs int) {
	writer.write(Instruction{Op: CallOp, Name: name, Index: nArgs})
}

func (writer *VMWriter) WriteFunction(name string, nLocals int) {
	writer.write(Instruction{Op: FunctionOp, Name: name, Index: nLocals})
}

func (writer *VMWriter) WriteReturn() {
	writer.write(Instruction{Op: ReturnOp})
}

// Instructions returns a copy of everything written so far.
func (writer *VMWriter) Instructions() []Instruction {
	return append([]Instruction(nil), writer.instructions...)
}

func (writer *VMWriter) Len() int {
	return len(writer.instructions)
}

// String renders the listing, one newline terminated line per instruction.
func (writer *VMWriter) String() string {
	builder := &strings.Builder{}
	for _, ins := range writer.instructions {
		builder.WriteString(ins.String())
		builder.WriteByte('\n')
	}
	return builder.String()
}

func (writer *VMWriter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, writer.String())
	return int64(n), err
}
