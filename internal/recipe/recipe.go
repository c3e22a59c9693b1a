// Package recipe implements the on-disk recipe document: a named,
// JSON-serializable snapshot of an action stack that an external
// collaborator persists and reloads. The core only manipulates the
// in-memory morph.Action model; this package is the narrow bridge between
// that model and the camelCase JSON document a host persists to disk.
package recipe

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrapbird/datamorph/internal/dmerrors"
	"github.com/scrapbird/datamorph/internal/morph"
	"github.com/scrapbird/datamorph/internal/schema"
)

// Document is the root of a recipe JSON document. ID is stamped with a
// fresh UUID on creation, so a recipe keeps a stable identity independent
// of its file name.
type Document struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Actions      []ActionJSON `json:"actions"`
	LastModified *time.Time   `json:"lastModified,omitempty"`
}

// ActionJSON is the wire representation of a morph.Action: a discriminated
// union keyed on Type, with only the fields relevant to that type present
// in a given document.
type ActionJSON struct {
	Type string `json:"type"`

	OldName string `json:"oldName,omitempty"`
	NewName string `json:"newName,omitempty"`

	Name string `json:"name,omitempty"`

	TargetType string `json:"targetType,omitempty"`

	Op    string `json:"op,omitempty"`
	Value string `json:"value,omitempty"`
}

// New creates a Document with a fresh ID and no actions.
func New(name, description string) (*Document, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: recipe name must be non-empty", dmerrors.ErrArgumentInvalid)
	}
	return &Document{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}, nil
}

// FromActions populates doc.Actions from an in-memory action stack and
// stamps LastModified to now.
func (doc *Document) FromActions(actions []morph.Action, now time.Time) error {
	encoded := make([]ActionJSON, 0, len(actions))
	for _, a := range actions {
		enc, err := encodeAction(a)
		if err != nil {
			return err
		}
		encoded = append(encoded, enc)
	}
	doc.Actions = encoded
	doc.LastModified = &now
	return nil
}

// ToActions decodes doc.Actions into the in-memory morph.Action model. An
// unknown Type value is an error; every other field is parsed per the
// discriminant.
func (doc *Document) ToActions() ([]morph.Action, error) {
	out := make([]morph.Action, 0, len(doc.Actions))
	for i, a := range doc.Actions {
		action, err := decodeAction(a)
		if err != nil {
			return nil, fmt.Errorf("recipe: action %d: %w", i, err)
		}
		out = append(out, action)
	}
	return out, nil
}

// Marshal renders doc as indented camelCase JSON.
func (doc *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses data into a Document, validating that name is
// non-empty. No other field is checked here; action types are validated
// by ToActions.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: recipe document missing name", dmerrors.ErrArgumentInvalid)
	}
	return &doc, nil
}

func encodeAction(a morph.Action) (ActionJSON, error) {
	switch a.Type {
	case morph.Rename:
		return ActionJSON{Type: "rename", OldName: a.OldName, NewName: a.NewName}, nil
	case morph.Delete:
		return ActionJSON{Type: "delete", Name: a.Name}, nil
	case morph.Cast:
		typeName, err := encodeCellType(a.TargetType)
		if err != nil {
			return ActionJSON{}, err
		}
		return ActionJSON{Type: "cast", Name: a.Name, TargetType: typeName}, nil
	case morph.Filter:
		op, err := encodeFilterOp(a.Op)
		if err != nil {
			return ActionJSON{}, err
		}
		return ActionJSON{Type: "filter", Name: a.Name, Op: op, Value: a.Value}, nil
	default:
		return ActionJSON{}, fmt.Errorf("recipe: unknown action type %v", a.Type)
	}
}

func decodeAction(a ActionJSON) (morph.Action, error) {
	switch a.Type {
	case "rename":
		return morph.NewRename(a.OldName, a.NewName), nil
	case "delete":
		return morph.NewDelete(a.Name), nil
	case "cast":
		target, err := decodeCellType(a.TargetType)
		if err != nil {
			return morph.Action{}, err
		}
		return morph.NewCast(a.Name, target), nil
	case "filter":
		op, err := decodeFilterOp(a.Op)
		if err != nil {
			return morph.Action{}, err
		}
		return morph.NewFilter(a.Name, op, a.Value), nil
	default:
		return morph.Action{}, fmt.Errorf("%w: unknown action type %q", dmerrors.ErrArgumentInvalid, a.Type)
	}
}

var cellTypeNames = map[schema.CellType]string{
	schema.Text:          "text",
	schema.WholeNumber:   "wholeNumber",
	schema.FloatingPoint: "floatingPoint",
	schema.Boolean:       "boolean",
	schema.Timestamp:     "timestamp",
	schema.JsonObject:    "jsonObject",
	schema.JsonArray:     "jsonArray",
	schema.Null:          "null",
}

func encodeCellType(t schema.CellType) (string, error) {
	name, ok := cellTypeNames[t]
	if !ok {
		return "", fmt.Errorf("recipe: unknown cell type %v", t)
	}
	return name, nil
}

func decodeCellType(name string) (schema.CellType, error) {
	for t, n := range cellTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown target type %q", dmerrors.ErrArgumentInvalid, name)
}

var filterOpNames = map[morph.FilterOp]string{
	morph.Equals:             "equals",
	morph.NotEquals:          "notEquals",
	morph.Contains:           "contains",
	morph.NotContains:        "notContains",
	morph.StartsWith:         "startsWith",
	morph.EndsWith:           "endsWith",
	morph.GreaterThan:        "greaterThan",
	morph.GreaterThanOrEqual: "greaterThanOrEqual",
	morph.LessThan:           "lessThan",
	morph.LessThanOrEqual:    "lessThanOrEqual",
}

func encodeFilterOp(op morph.FilterOp) (string, error) {
	name, ok := filterOpNames[op]
	if !ok {
		return "", fmt.Errorf("recipe: unknown filter op %v", op)
	}
	return name, nil
}

func decodeFilterOp(name string) (morph.FilterOp, error) {
	for op, n := range filterOpNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown filter op %q", dmerrors.ErrArgumentInvalid, name)
}
