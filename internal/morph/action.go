// Package morph implements the lazy transformer: a read-only, projected
// view over a base table source derived from an ordered list of actions
// (rename, delete, cast, filter), computed without rewriting any
// underlying data.
package morph

import "github.com/scrapbird/datamorph/internal/schema"

// ActionType discriminates the MorphAction tagged union.
type ActionType int

const (
	Rename ActionType = iota
	Delete
	Cast
	Filter
)

// FilterOp enumerates the comparison operators a Filter action can use.
type FilterOp int

const (
	Equals FilterOp = iota
	NotEquals
	Contains
	NotContains
	StartsWith
	EndsWith
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

// Action is the MorphAction tagged union. Only the fields relevant to Type
// are meaningful; the zero value of the others is ignored.
type Action struct {
	Type ActionType

	OldName string // Rename
	NewName string // Rename

	Name string // Delete, Cast, Filter

	TargetType schema.CellType // Cast

	Op    FilterOp // Filter
	Value string   // Filter
}

func NewRename(oldName, newName string) Action {
	return Action{Type: Rename, OldName: oldName, NewName: newName}
}

func NewDelete(name string) Action {
	return Action{Type: Delete, Name: name}
}

func NewCast(name string, target schema.CellType) Action {
	return Action{Type: Cast, Name: name, TargetType: target}
}

func NewFilter(name string, op FilterOp, value string) Action {
	return Action{Type: Filter, Name: name, Op: op, Value: value}
}

// FilterSpec is a Filter action resolved against the working column list at
// the point it was folded: the source column it reads from, the type it
// should be evaluated as, and the comparison itself.
type FilterSpec struct {
	SourceColumnIndex int
	EffectiveType     schema.CellType
	Op                FilterOp
	Value             string
}
