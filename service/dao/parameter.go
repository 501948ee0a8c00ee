package dao

// Parameter narrows List results. Stores interpret the names they know and
// ignore the rest.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter returns a parameter with a single value or a value list.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Values returns the parameter value as a string list.
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}
