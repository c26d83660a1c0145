package vmcheck

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/xiaobogaga/jackc/util"
)

// A checker for vm listings. It reads the same language a vm translator reads:
// Memory access commands: push|pop segment integer where segment could be: [argument, local, static, constant, this, that, pointer, temp].
// Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not
// Program flow commands: label label_name, if-goto label_name, goto label_name. where label_name is a-zA-Z0-9_.:$
// Function calling commands: function func_name integer, call func_name integer, return.
// Nothing is translated, every line is only checked, so a listing that passes can be
// handed to a translator as is.

var ErrSyntax = errors.New("syntax error")
var ErrUndefinedLabel = errors.New("undefined label")

type keyWordTP int

const (
	pushKeyWordTP keyWordTP = iota
	popKeyWordTP
	argumentKeyWordTP
	localKeyWordTP
	staticKeyWordTP
	constantKeyWordTP
	thisKeyWordTP
	thatKeyWordTP
	pointerKeyWordTP
	tempKeyWordTP
	addKeyWordTP
	subKeyWordTP
	negKeyWordTP
	eqKeyWordTP
	gtKeyWordTP
	ltKeyWordTP
	andKeyWordTP
	orKeyWordTP
	notKeyWordTP
	labelKeyWordTP
	ifGotoKeyWordTP
	gotoKeyWordTP
	functionKeyWordTP
	callKeyWordTP
	returnKeyWordTP
	commentKeyWordTP
)

// The vm language is case sensitive, every keyword is lower case.
var keyWordsMap = map[string]keyWordTP{
	"push":     pushKeyWordTP,
	"pop":      popKeyWordTP,
	"argument": argumentKeyWordTP,
	"local":    localKeyWordTP,
	"static":   staticKeyWordTP,
	"constant": constantKeyWordTP,
	"this":     thisKeyWordTP,
	"that":     thatKeyWordTP,
	"pointer":  pointerKeyWordTP,
	"temp":     tempKeyWordTP,
	"add":      addKeyWordTP,
	"sub":      subKeyWordTP,
	"neg":      negKeyWordTP,
	"eq":       eqKeyWordTP,
	"gt":       gtKeyWordTP,
	"lt":       ltKeyWordTP,
	"and":      andKeyWordTP,
	"or":       orKeyWordTP,
	"not":      notKeyWordTP,
	"label":    labelKeyWordTP,
	"if-goto":  ifGotoKeyWordTP,
	"goto":     gotoKeyWordTP,
	"function": functionKeyWordTP,
	"call":     callKeyWordTP,
	"return":   returnKeyWordTP,
	"//":       commentKeyWordTP,
}

// Upper bound (exclusive) of the index of the fixed size segments.
var segmentSizes = map[keyWordTP]int{
	pointerKeyWordTP:  2,
	tempKeyWordTP:     8,
	constantKeyWordTP: 32768,
}

type jump struct {
	label string
	line  int
}

// Checker validates vm listings line by line. Labels are scoped to the function
// they appear in, so a goto can only target a label of its own function.
type Checker struct {
	fileName        string
	lineCounter     int
	currentFunction string
	labels          map[string]int
	jumps           []jump
	errs            *multierror.Error
}

func NewChecker() *Checker {
	return &Checker{}
}

// CheckFile checks the listing stored at path.
func (checker *Checker) CheckFile(path string) error {
	rd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer rd.Close()
	checker.fileName = path
	return checker.Check(rd)
}

// Check reads a whole listing. Every bad line is reported, the returned error is a
// *multierror.Error holding all of them, or nil when the listing is valid.
func (checker *Checker) Check(rd io.Reader) error {
	checker.reset()
	reader := bufio.NewReader(rd)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) > 0 {
			checker.lineCounter++
			lineErr := checker.parseLine(line)
			if lineErr != nil {
				checker.errs = multierror.Append(checker.errs, lineErr)
			}
		}
		if err == io.EOF {
			break
		}
	}
	checker.endFunction()
	return checker.errs.ErrorOrNil()
}

func (checker *Checker) reset() {
	checker.lineCounter = 0
	checker.currentFunction = ""
	checker.labels = map[string]int{}
	checker.jumps = nil
	checker.errs = nil
}

// getNextToken tries to fetch the next token, and return it if it has, otherwise return an empty string.
func (checker *Checker) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' {
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (checker *Checker) parseLine(line []byte) (err error) {
	token, line := checker.getNextToken(line)
	if len(token) == 0 {
		return nil
	}
	if len(token) >= 2 && token[:2] == "//" {
		return nil
	}
	keyWordTP, exist := keyWordsMap[token]
	if !exist {
		return checker.makeError(token, "unknown command")
	}
	if keyWordTP != functionKeyWordTP && keyWordTP != commentKeyWordTP && checker.currentFunction == "" {
		return checker.makeError(token, "command outside of a function")
	}
	switch keyWordTP {
	case commentKeyWordTP:
		return nil
	case pushKeyWordTP, popKeyWordTP:
		err = checker.parseMemoryAccess(keyWordTP, line)
	case addKeyWordTP, subKeyWordTP, negKeyWordTP, eqKeyWordTP, gtKeyWordTP, ltKeyWordTP,
		andKeyWordTP, orKeyWordTP, notKeyWordTP, returnKeyWordTP:
		err = checker.parseRemainContent(line)
	case labelKeyWordTP:
		err = checker.parseLabel(line)
	case ifGotoKeyWordTP, gotoKeyWordTP:
		err = checker.parseGoto(line)
	case functionKeyWordTP:
		err = checker.parseFunction(line)
	case callKeyWordTP:
		err = checker.parseCall(line)
	default:
		err = checker.makeError(token, "unknown command")
	}
	return err
}

// push|pop segment index
func (checker *Checker) parseMemoryAccess(opTP keyWordTP, line []byte) error {
	token, line := checker.getNextToken(line)
	if len(token) == 0 {
		return checker.makeError(token, "missing segment")
	}
	segment, exist := keyWordsMap[token]
	if !exist || segment < argumentKeyWordTP || segment > tempKeyWordTP {
		return checker.makeError(token, "unknown segment")
	}
	if opTP == popKeyWordTP && segment == constantKeyWordTP {
		return checker.makeError(token, "can't pop to constant segment")
	}
	index, line, err := checker.getIntegerValue(line)
	if err != nil {
		return err
	}
	if size, ok := segmentSizes[segment]; ok && index >= size {
		return checker.makeError(strconv.Itoa(index), fmt.Sprintf("index out of range of %s segment", token))
	}
	return checker.parseRemainContent(line)
}

func (checker *Checker) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := checker.getNextToken(line)
	if len(token) == 0 {
		return -1, nil, checker.makeError(token, "missing integer")
	}
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, checker.makeError(token, "expect a non negative integer")
	}
	return ret, line, nil
}

func (checker *Checker) parseLabelName(line []byte) ([]byte, string, error) {
	token, line := checker.getNextToken(line)
	if len(token) == 0 {
		return nil, "", checker.makeError(token, "missing name")
	}
	if util.IsNumber(token[0]) {
		return nil, "", checker.makeError(token, "name can't start with a digit")
	}
	for i := 0; i < len(token); i++ {
		if !util.IsLabelCharacter(token[i]) {
			return nil, "", checker.makeError(token, "illegal character in name")
		}
	}
	return line, token, nil
}

func (checker *Checker) parseLabel(line []byte) error {
	line, label, err := checker.parseLabelName(line)
	if err != nil {
		return err
	}
	if definedAt, ok := checker.labels[label]; ok {
		return checker.makeError(label, fmt.Sprintf("label already defined at line %d", definedAt))
	}
	checker.labels[label] = checker.lineCounter
	return checker.parseRemainContent(line)
}

// goto and if-goto. A label may be defined after the jump, so targets are resolved
// when the function ends.
func (checker *Checker) parseGoto(line []byte) error {
	line, label, err := checker.parseLabelName(line)
	if err != nil {
		return err
	}
	checker.jumps = append(checker.jumps, jump{label: label, line: checker.lineCounter})
	return checker.parseRemainContent(line)
}

// function f k, declares a function f which has k local variables.
func (checker *Checker) parseFunction(line []byte) error {
	checker.endFunction()
	line, funcName, err := checker.parseLabelName(line)
	if err != nil {
		return err
	}
	checker.currentFunction = funcName
	_, line, err = checker.getIntegerValue(line)
	if err != nil {
		return err
	}
	return checker.parseRemainContent(line)
}

// call f m, calls function f with m arguments on the stack.
func (checker *Checker) parseCall(line []byte) error {
	line, _, err := checker.parseLabelName(line)
	if err != nil {
		return err
	}
	_, line, err = checker.getIntegerValue(line)
	if err != nil {
		return err
	}
	return checker.parseRemainContent(line)
}

// endFunction reports the jumps of the current function to labels it never defined.
func (checker *Checker) endFunction() {
	for _, j := range checker.jumps {
		if _, ok := checker.labels[j.label]; !ok {
			checker.errs = multierror.Append(checker.errs, fmt.Errorf("%w: %s%s at line %d in %s",
				ErrUndefinedLabel, checker.location(), j.label, j.line, checker.currentFunction))
		}
	}
	checker.labels = map[string]int{}
	checker.jumps = nil
}

func (checker *Checker) parseRemainContent(line []byte) (err error) {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 {
		return nil
	}
	// Ignore comment
	if len(remain) >= 2 && remain[0] == '/' && remain[1] == '/' {
		return nil
	}
	return checker.makeError(string(remain), "unexpected content")
}

func (checker *Checker) location() string {
	if checker.fileName == "" {
		return ""
	}
	return checker.fileName + ": "
}

func (checker *Checker) makeError(near string, msg string) error {
	return fmt.Errorf("%w: %snear %q at line %d: %s", ErrSyntax, checker.location(), near, checker.lineCounter, msg)
}

// Check validates a single listing.
func Check(rd io.Reader) error {
	return NewChecker().Check(rd)
}
