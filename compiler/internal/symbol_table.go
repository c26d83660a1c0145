package internal

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
	ErrRedefinedSymbol  = errors.New("redefined symbol")
)

// SymbolKind is the storage kind of a variable. It decides both the scope the
// variable lives in and the vm segment it is addressed through.
type SymbolKind int

const (
	StaticKind SymbolKind = iota
	FieldKind
	ArgumentKind
	LocalKind
)

func (kind SymbolKind) String() string {
	switch kind {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return "unknown"
}

// Segment maps a storage kind to the vm segment holding it.
func (kind SymbolKind) Segment() Segment {
	switch kind {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgumentKind:
		return ArgumentSegment
	default:
		return LocalSegment
	}
}

func (kind SymbolKind) isClassScope() bool {
	return kind == StaticKind || kind == FieldKind
}

type Symbol struct {
	Name  string
	Type  string
	Kind  SymbolKind
	Index int
}

type scope struct {
	symbols map[string]Symbol
	counts  map[SymbolKind]int
}

func newScope() *scope {
	return &scope{symbols: map[string]Symbol{}, counts: map[SymbolKind]int{}}
}

// SymbolTable has two scopes. The class scope holds static and field variables for
// the whole class, the subroutine scope holds arguments and locals and is rebuilt
// for every subroutine. Lookups search the subroutine scope first.
type SymbolTable struct {
	classScope      *scope
	subroutineScope *scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{classScope: newScope(), subroutineScope: newScope()}
}

// StartSubroutine drops every argument and local of the previous subroutine.
func (table *SymbolTable) StartSubroutine() {
	table.subroutineScope = newScope()
}

func (table *SymbolTable) scopeOf(kind SymbolKind) *scope {
	if kind.isClassScope() {
		return table.classScope
	}
	return table.subroutineScope
}

// Define adds name to the scope of kind. Its index is the number of symbols of the
// same kind already defined there.
func (table *SymbolTable) Define(name, tp string, kind SymbolKind) error {
	target := table.scopeOf(kind)
	if existing, ok := target.symbols[name]; ok {
		return fmt.Errorf("%w: %s is already defined as %s %s", ErrRedefinedSymbol, name, existing.Kind,
			existing.Type)
	}
	target.symbols[name] = Symbol{Name: name, Type: tp, Kind: kind, Index: target.counts[kind]}
	target.counts[kind]++
	return nil
}

func (table *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := table.subroutineScope.symbols[name]; ok {
		return symbol, true
	}
	symbol, ok := table.classScope.symbols[name]
	return symbol, ok
}

func (table *SymbolTable) resolve(name string) (Symbol, error) {
	symbol, ok := table.Lookup(name)
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %s", ErrUnresolvedSymbol, name)
	}
	return symbol, nil
}

func (table *SymbolTable) KindOf(name string) (SymbolKind, error) {
	symbol, err := table.resolve(name)
	return symbol.Kind, err
}

func (table *SymbolTable) TypeOf(name string) (string, error) {
	symbol, err := table.resolve(name)
	return symbol.Type, err
}

func (table *SymbolTable) IndexOf(name string) (int, error) {
	symbol, err := table.resolve(name)
	return symbol.Index, err
}

// VarCount is the number of symbols of kind, which is also the next free index.
func (table *SymbolTable) VarCount(kind SymbolKind) int {
	return table.scopeOf(kind).counts[kind]
}
