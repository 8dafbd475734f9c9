package mapcss

import (
	"bytes"
	"encoding/json"
)

// Declarations is an insertion ordered map of style properties.
type Declarations struct {
	keys   []string
	values map[string]Value
}

func NewDeclarations() *Declarations {
	return &Declarations{values: make(map[string]Value)}
}

// Set stores v under key. Setting an undefined value removes the key.
func (d *Declarations) Set(key string, v Value) {
	if !v.IsDefined() {
		d.Delete(key)
		return
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Declarations) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

func (d *Declarations) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Declarations) Len() int {
	return len(d.keys)
}

func (d *Declarations) IsEmpty() bool {
	return len(d.keys) == 0
}

func (d *Declarations) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Merge copies every entry of other into d, overwriting existing keys.
func (d *Declarations) Merge(other *Declarations) {
	for _, key := range other.keys {
		d.Set(key, other.values[key])
	}
}

func (d *Declarations) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := d.values[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (i *Instruction) Apply(t Target, into *Declarations) {
	if i.Key == "text" {
		if literal, ok := i.Value.(*Literal); ok && literal.Value.Kind() == KindString {
			// "text: name" means the value of the name tag
			value, ok := t.Tag(literal.Value.String())
			if !ok {
				into.Set(i.Key, Undefined)
				return
			}
			into.Set(i.Key, String(value))
			return
		}
	}

	into.Set(i.Key, i.Value.Eval(t))
}

func (s *SetInstruction) Apply(t Target, into *Declarations) {
	t.SetClass(s.Class)
}
