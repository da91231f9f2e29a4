package payment

// Field identifies a card field in the dirty set.
type Field string

const (
	FieldNumber    Field = "number"
	FieldCSC       Field = "csc"
	FieldYear      Field = "year"
	FieldMonth     Field = "month"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldAddress1  Field = "address_1"
	FieldAddress2  Field = "address_2"
	FieldCity      Field = "city"
	FieldState     Field = "state"
	FieldZip       Field = "zip"
	FieldCustom    Field = "custom"
)

var fieldOrder = []Field{
	FieldNumber, FieldCSC, FieldYear, FieldMonth,
	FieldFirstName, FieldLastName, FieldAddress1, FieldAddress2,
	FieldCity, FieldState, FieldZip, FieldCustom,
}

// FieldSet is a set of changed fields.
type FieldSet map[Field]struct{}

func (s FieldSet) Add(f Field) { s[f] = struct{}{} }

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func (s FieldSet) Len() int { return len(s) }

// List returns the fields in declaration order.
func (s FieldSet) List() []Field {
	out := make([]Field, 0, len(s))
	for _, f := range fieldOrder {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FieldSet) clear() {
	for f := range s {
		delete(s, f)
	}
}
