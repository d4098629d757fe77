package ast

// Type is a resolved static type. The zero value means "not yet checked".
type Type int

const (
	NoType Type = iota
	IntegerType
	BooleanType
	StringType
	FloatType // no literal produces it
)

func (t Type) String() string {
	switch t {
	case IntegerType:
		return "integer"
	case BooleanType:
		return "boolean"
	case StringType:
		return "string"
	case FloatType:
		return "float"
	default:
		return "untyped"
	}
}

// Typed is the mutable type slot embedded in every non-literal node.
type Typed struct {
	T Type
}

// Type returns the resolved type, or NoType before checking.
func (t *Typed) Type() Type { return t.T }

// SetType fills the slot.
func (t *Typed) SetType(typ Type) { t.T = typ }
