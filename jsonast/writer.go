package jsonast

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/anvil-idl/anvil/model"
)

// Write encodes the model in its JSON form: the version key first, then
// metadata, then every shape in registry order. encoding/json's map
// marshaling would sort keys; writing by hand keeps declaration order.
func Write(w io.Writer, m *model.Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode returns the indented JSON form of the model.
func Encode(m *model.Model) ([]byte, error) {
	e := &encoder{}
	e.openObject()
	e.key(VersionKey)
	e.stringValue(m.Version())
	if m.Metadata().Len() > 0 {
		e.key("metadata")
		e.value(m.Metadata())
	}
	e.key("shapes")
	e.openObject()
	for _, id := range m.ShapeIDs() {
		shape, _ := m.Shape(id)
		e.key(id.String())
		if err := e.shape(shape); err != nil {
			return nil, err
		}
		if placeholder, ok := shape.Body.(*model.UnresolvedShape); ok {
			e.pendingApplies(id, placeholder)
		}
	}
	e.closeObject()
	e.closeObject()
	e.buf.WriteByte('\n')
	return e.buf.Bytes(), e.err
}

type encoder struct {
	buf    bytes.Buffer
	indent int
	first  []bool
	err    error
}

func (e *encoder) newline() {
	e.buf.WriteByte('\n')
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
}

func (e *encoder) openObject() {
	e.buf.WriteByte('{')
	e.indent++
	e.first = append(e.first, true)
}

func (e *encoder) closeObject() {
	e.indent--
	if !e.first[len(e.first)-1] {
		e.newline()
	}
	e.first = e.first[:len(e.first)-1]
	e.buf.WriteByte('}')
}

func (e *encoder) key(name string) {
	top := len(e.first) - 1
	if !e.first[top] {
		e.buf.WriteByte(',')
	}
	e.first[top] = false
	e.newline()
	e.buf.WriteString(strconv.Quote(name))
	e.buf.WriteString(": ")
}

func (e *encoder) stringValue(s string) {
	e.buf.WriteString(strconv.Quote(s))
}

func (e *encoder) value(v model.Value) {
	switch val := v.(type) {
	case nil, model.Null:
		e.buf.WriteString("null")
	case model.Boolean:
		e.buf.WriteString(strconv.FormatBool(bool(val)))
	case model.Number:
		if i, ok := val.Int(); ok {
			e.buf.WriteString(strconv.FormatInt(i, 10))
		} else {
			e.buf.WriteString(formatFloat(val.AsFloat()))
		}
	case model.String:
		e.stringValue(string(val))
	case model.Array:
		if len(val) == 0 {
			e.buf.WriteString("[]")
			return
		}
		e.buf.WriteByte('[')
		e.indent++
		for i, elem := range val {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline()
			e.value(elem)
		}
		e.indent--
		e.newline()
		e.buf.WriteByte(']')
	case *model.Object:
		if val.Len() == 0 {
			e.buf.WriteString("{}")
			return
		}
		e.openObject()
		for _, k := range val.Keys() {
			elem, _ := val.Get(k)
			e.key(k)
			e.value(elem)
		}
		e.closeObject()
	default:
		e.err = fmt.Errorf("unencodable value %T", v)
		e.buf.WriteString("null")
	}
}

// formatFloat always keeps a fractional or exponent part so a float value
// re-reads as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}

func (e *encoder) shape(shape *model.TopLevelShape) error {
	e.openObject()
	e.key("type")
	e.stringValue(shape.Body.KindName())

	switch body := shape.Body.(type) {
	case *model.SimpleShape, *model.UnresolvedShape:
		// No body fields beyond the type.
	case *model.ListShape:
		e.memberField("member", body.Member)
	case *model.SetShape:
		e.memberField("member", body.Member)
	case *model.MapShape:
		e.memberField("key", body.Key)
		e.memberField("value", body.Value)
	case *model.StructureShape:
		e.membersField(body.Members)
	case *model.UnionShape:
		e.membersField(body.Members)
	case *model.ServiceShape:
		e.key("version")
		e.stringValue(body.Version)
		e.idListField("operations", body.Operations)
		e.idListField("resources", body.Resources)
		if len(body.Renames) > 0 {
			e.key("rename")
			e.openObject()
			for _, id := range sortedRenameKeys(body.Renames) {
				e.key(id.String())
				e.stringValue(body.Renames[id].String())
			}
			e.closeObject()
		}
	case *model.OperationShape:
		e.idField("input", body.Input)
		e.idField("output", body.Output)
		e.idListField("errors", body.Errors)
	case *model.ResourceShape:
		if body.Identifiers.Len() > 0 {
			e.key("identifiers")
			e.openObject()
			for _, name := range body.Identifiers.Names() {
				member, _ := body.Identifiers.Get(name)
				e.key(name.String())
				e.stringValue(member.Target.String())
			}
			e.closeObject()
		}
		e.idField("create", body.Create)
		e.idField("put", body.Put)
		e.idField("read", body.Read)
		e.idField("update", body.Update)
		e.idField("delete", body.Delete)
		e.idField("list", body.List)
		e.idListField("operations", body.Operations)
		e.idListField("collectionOperations", body.CollectionOps)
		e.idListField("resources", body.Resources)
	default:
		return fmt.Errorf("unencodable shape body %T", shape.Body)
	}

	e.traitsField(shape.Traits)
	e.closeObject()
	return e.err
}

// pendingApplies emits one apply entry per member application still pending
// on a placeholder, so a model encoded mid-assembly re-reads losslessly.
func (e *encoder) pendingApplies(id model.ShapeID, placeholder *model.UnresolvedShape) {
	for _, name := range placeholder.Pending.Names() {
		member, _ := placeholder.Pending.Get(name)
		if member.Traits.Len() == 0 {
			continue
		}
		e.key(id.ToMember(name).String())
		e.openObject()
		e.key("type")
		e.stringValue("apply")
		e.traitsField(member.Traits)
		e.closeObject()
	}
}

func (e *encoder) memberField(name string, member *model.MemberShape) {
	if member == nil {
		return
	}
	e.key(name)
	e.openObject()
	e.key("target")
	e.stringValue(member.Target.String())
	e.traitsField(member.Traits)
	e.closeObject()
}

func (e *encoder) membersField(members *model.Members) {
	if members.Len() == 0 {
		return
	}
	e.key("members")
	e.openObject()
	for _, name := range members.Names() {
		member, _ := members.Get(name)
		e.memberField(name.String(), member)
	}
	e.closeObject()
}

func (e *encoder) idField(name string, id model.ShapeID) {
	if id.IsZero() {
		return
	}
	e.key(name)
	e.stringValue(id.String())
}

func (e *encoder) idListField(name string, ids []model.ShapeID) {
	if len(ids) == 0 {
		return
	}
	e.key(name)
	e.buf.WriteByte('[')
	e.indent++
	for i, id := range ids {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline()
		e.stringValue(id.String())
	}
	e.indent--
	e.newline()
	e.buf.WriteByte(']')
}

func (e *encoder) traitsField(traits *model.Traits) {
	if traits.Len() == 0 {
		return
	}
	e.key("traits")
	e.openObject()
	for _, id := range traits.IDs() {
		v, _ := traits.Get(id)
		e.key(id.String())
		if v == nil {
			e.buf.WriteString("{}")
			continue
		}
		e.value(v)
	}
	e.closeObject()
}

func sortedRenameKeys(renames map[model.ShapeID]model.Identifier) []model.ShapeID {
	keys := make([]model.ShapeID, 0, len(renames))
	for id := range renames {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
