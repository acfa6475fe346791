// Package jsonast reads and writes the JSON form of a model. The reader
// preserves metadata and trait value key order and keeps integers and
// floats distinct; the writer emits shapes in registry order so encoding
// is deterministic.
package jsonast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anvil-idl/anvil/model"
)

// VersionKey is the top-level key carrying the model version.
const VersionKey = "anvil"

// Read decodes a JSON model artifact into a fresh model. Shape, trait, and
// metadata conflicts inside a single artifact surface as errors the same
// way cross-artifact merge conflicts do.
func Read(r io.Reader) (*model.Model, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	doc, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode model document: %w", err)
	}
	root, ok := doc.(*model.Object)
	if !ok {
		return nil, fmt.Errorf("model document must be a JSON object")
	}
	return fromObject(root)
}

// ReadBytes is Read over an in-memory artifact.
func ReadBytes(data []byte) (*model.Model, error) {
	return Read(bytes.NewReader(data))
}

func fromObject(root *model.Object) (*model.Model, error) {
	version := ""
	if v, ok := root.Get(VersionKey); ok {
		s, ok := v.(model.String)
		if !ok {
			return nil, fmt.Errorf("%q must be a string", VersionKey)
		}
		version = string(s)
	}
	m := model.NewModel(version)

	if v, ok := root.Get("metadata"); ok {
		meta, ok := v.(*model.Object)
		if !ok {
			return nil, fmt.Errorf("metadata must be an object")
		}
		for _, key := range meta.Keys() {
			value, _ := meta.Get(key)
			if err := m.AddMetadata(key, value); err != nil {
				return nil, err
			}
		}
	}

	if v, ok := root.Get("shapes"); ok {
		shapes, ok := v.(*model.Object)
		if !ok {
			return nil, fmt.Errorf("shapes must be an object")
		}
		// Definitions load first so that "apply" entries targeting members
		// of shapes declared later in the document still resolve.
		var applies []string
		for _, key := range shapes.Keys() {
			id, err := model.ParseShapeID(key)
			if err != nil {
				return nil, fmt.Errorf("shape key %q: %w", key, err)
			}
			body, _ := shapes.Get(key)
			obj, ok := body.(*model.Object)
			if !ok {
				return nil, fmt.Errorf("shape %q must be an object", key)
			}
			if kind, err := requireString(obj, "type"); err == nil && kind == "apply" {
				applies = append(applies, key)
				continue
			}
			shape, err := shapeFromObject(id, obj)
			if err != nil {
				return nil, fmt.Errorf("shape %q: %w", key, err)
			}
			if err := m.AddShape(shape); err != nil {
				return nil, err
			}
		}
		for _, key := range applies {
			id := model.MustShapeID(key)
			obj, _ := shapes.Get(key)
			if err := applyEntry(m, id, obj.(*model.Object)); err != nil {
				return nil, fmt.Errorf("shape %q: %w", key, err)
			}
		}
	}
	return m, nil
}

// applyEntry handles a shape entry of type "apply": trait applications to a
// shape or member defined elsewhere, possibly in another artifact.
func applyEntry(m *model.Model, id model.ShapeID, obj *model.Object) error {
	v, ok := obj.Get("traits")
	if !ok {
		return nil
	}
	set, ok := v.(*model.Object)
	if !ok {
		return fmt.Errorf("traits must be an object")
	}
	for _, key := range set.Keys() {
		trait, err := model.ParseShapeID(key)
		if err != nil {
			return fmt.Errorf("trait id %q: %w", key, err)
		}
		value, _ := set.Get(key)
		if err := m.AddTrait(id, trait, value); err != nil {
			return err
		}
	}
	return nil
}

func shapeFromObject(id model.ShapeID, obj *model.Object) (*model.TopLevelShape, error) {
	kind, err := requireString(obj, "type")
	if err != nil {
		return nil, err
	}

	var body model.ShapeBody
	switch kind {
	case "apply":
		body = &model.UnresolvedShape{}
	case "list":
		member, err := memberFromKey(obj, "member")
		if err != nil {
			return nil, err
		}
		body = &model.ListShape{Member: member}
	case "set":
		member, err := memberFromKey(obj, "member")
		if err != nil {
			return nil, err
		}
		body = &model.SetShape{Member: member}
	case "map":
		key, err := memberFromKey(obj, "key")
		if err != nil {
			return nil, err
		}
		value, err := memberFromKey(obj, "value")
		if err != nil {
			return nil, err
		}
		body = &model.MapShape{Key: key, Value: value}
	case "structure":
		members, err := membersFromKey(obj, "members")
		if err != nil {
			return nil, err
		}
		body = &model.StructureShape{Members: members}
	case "union":
		members, err := membersFromKey(obj, "members")
		if err != nil {
			return nil, err
		}
		body = &model.UnionShape{Members: members}
	case "service":
		version, err := requireString(obj, "version")
		if err != nil {
			return nil, err
		}
		operations, err := idListFromKey(obj, "operations")
		if err != nil {
			return nil, err
		}
		resources, err := idListFromKey(obj, "resources")
		if err != nil {
			return nil, err
		}
		renames, err := renamesFromKey(obj, "rename")
		if err != nil {
			return nil, err
		}
		body = &model.ServiceShape{Version: version, Operations: operations, Resources: resources, Renames: renames}
	case "operation":
		input, err := idFromKey(obj, "input")
		if err != nil {
			return nil, err
		}
		output, err := idFromKey(obj, "output")
		if err != nil {
			return nil, err
		}
		errIDs, err := idListFromKey(obj, "errors")
		if err != nil {
			return nil, err
		}
		body = &model.OperationShape{Input: input, Output: output, Errors: errIDs}
	case "resource":
		body, err = resourceFromObject(obj)
		if err != nil {
			return nil, err
		}
	default:
		simple, ok := model.ParseSimpleKind(kind)
		if !ok {
			return nil, fmt.Errorf("unknown shape type %q", kind)
		}
		body = &model.SimpleShape{Kind: simple}
	}

	shape := model.NewShape(id, body)
	if err := applyTraits(shape.Traits, obj); err != nil {
		return nil, err
	}
	return shape, nil
}

func resourceFromObject(obj *model.Object) (*model.ResourceShape, error) {
	body := &model.ResourceShape{Identifiers: model.NewMembers()}
	if v, ok := obj.Get("identifiers"); ok {
		ids, ok := v.(*model.Object)
		if !ok {
			return nil, fmt.Errorf("identifiers must be an object")
		}
		for _, name := range ids.Keys() {
			raw, _ := ids.Get(name)
			target, err := targetID(raw)
			if err != nil {
				return nil, fmt.Errorf("identifier %q: %w", name, err)
			}
			ident, err := model.ParseIdentifier(name)
			if err != nil {
				return nil, err
			}
			body.Identifiers.Set(model.NewMember(ident, target))
		}
	}
	var err error
	for key, field := range map[string]*model.ShapeID{
		"create": &body.Create, "put": &body.Put, "read": &body.Read,
		"update": &body.Update, "delete": &body.Delete, "list": &body.List,
	} {
		if *field, err = idFromKey(obj, key); err != nil {
			return nil, err
		}
	}
	if body.Operations, err = idListFromKey(obj, "operations"); err != nil {
		return nil, err
	}
	if body.CollectionOps, err = idListFromKey(obj, "collectionOperations"); err != nil {
		return nil, err
	}
	if body.Resources, err = idListFromKey(obj, "resources"); err != nil {
		return nil, err
	}
	return body, nil
}

func applyTraits(traits *model.Traits, obj *model.Object) error {
	v, ok := obj.Get("traits")
	if !ok {
		return nil
	}
	set, ok := v.(*model.Object)
	if !ok {
		return fmt.Errorf("traits must be an object")
	}
	for _, key := range set.Keys() {
		id, err := model.ParseShapeID(key)
		if err != nil {
			return fmt.Errorf("trait id %q: %w", key, err)
		}
		value, _ := set.Get(key)
		traits.Apply(id, value)
	}
	return nil
}

func memberFromKey(obj *model.Object, key string) (*model.MemberShape, error) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, fmt.Errorf("missing %q member", key)
	}
	member, ok := v.(*model.Object)
	if !ok {
		return nil, fmt.Errorf("%q must be an object", key)
	}
	target, err := idFromKey(member, "target")
	if err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, fmt.Errorf("%q is missing a target", key)
	}
	m := model.NewMember(model.Identifier(key), target)
	if err := applyTraits(m.Traits, member); err != nil {
		return nil, err
	}
	return m, nil
}

func membersFromKey(obj *model.Object, key string) (*model.Members, error) {
	members := model.NewMembers()
	v, ok := obj.Get(key)
	if !ok {
		return members, nil
	}
	set, ok := v.(*model.Object)
	if !ok {
		return nil, fmt.Errorf("%q must be an object", key)
	}
	for _, name := range set.Keys() {
		raw, _ := set.Get(name)
		entry, ok := raw.(*model.Object)
		if !ok {
			return nil, fmt.Errorf("member %q must be an object", name)
		}
		target, err := idFromKey(entry, "target")
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", name, err)
		}
		if target.IsZero() {
			return nil, fmt.Errorf("member %q is missing a target", name)
		}
		ident, err := model.ParseIdentifier(name)
		if err != nil {
			return nil, err
		}
		member := model.NewMember(ident, target)
		if err := applyTraits(member.Traits, entry); err != nil {
			return nil, fmt.Errorf("member %q: %w", name, err)
		}
		members.Set(member)
	}
	return members, nil
}

// targetID accepts both the plain string form and the {"target": "..."}
// object form for shape references.
func targetID(v model.Value) (model.ShapeID, error) {
	switch val := v.(type) {
	case model.String:
		return model.ParseShapeID(string(val))
	case *model.Object:
		inner, ok := val.Get("target")
		if !ok {
			return model.ShapeID{}, fmt.Errorf("reference object is missing \"target\"")
		}
		s, ok := inner.(model.String)
		if !ok {
			return model.ShapeID{}, fmt.Errorf("\"target\" must be a string")
		}
		return model.ParseShapeID(string(s))
	}
	return model.ShapeID{}, fmt.Errorf("shape reference must be a string or reference object")
}

func idFromKey(obj *model.Object, key string) (model.ShapeID, error) {
	v, ok := obj.Get(key)
	if !ok {
		return model.ShapeID{}, nil
	}
	id, err := targetID(v)
	if err != nil {
		return model.ShapeID{}, fmt.Errorf("%q: %w", key, err)
	}
	return id, nil
}

func idListFromKey(obj *model.Object, key string) ([]model.ShapeID, error) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	arr, ok := v.(model.Array)
	if !ok {
		return nil, fmt.Errorf("%q must be an array", key)
	}
	out := make([]model.ShapeID, 0, len(arr))
	for _, elem := range arr {
		id, err := targetID(elem)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func renamesFromKey(obj *model.Object, key string) (map[model.ShapeID]model.Identifier, error) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, nil
	}
	set, ok := v.(*model.Object)
	if !ok {
		return nil, fmt.Errorf("%q must be an object", key)
	}
	out := make(map[model.ShapeID]model.Identifier, set.Len())
	for _, k := range set.Keys() {
		id, err := model.ParseShapeID(k)
		if err != nil {
			return nil, fmt.Errorf("rename key %q: %w", k, err)
		}
		raw, _ := set.Get(k)
		s, ok := raw.(model.String)
		if !ok {
			return nil, fmt.Errorf("rename of %q must be a string", k)
		}
		name, err := model.ParseIdentifier(string(s))
		if err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, nil
}

func requireString(obj *model.Object, key string) (string, error) {
	v, ok := obj.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := v.(model.String)
	if !ok {
		return "", fmt.Errorf("%q must be a string", key)
	}
	return string(s), nil
}

// decodeValue decodes one JSON value off the token stream into the model
// value tree. encoding/json's map decoding would lose object key order, so
// objects are rebuilt token by token; UseNumber keeps 1 and 1.0 distinct.
func decodeValue(dec *json.Decoder) (model.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (model.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := model.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string")
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr model.Array
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			if arr == nil {
				arr = model.Array{}
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return model.String(t), nil
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			i, err := t.Int64()
			if err == nil {
				return model.Integer(i), nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return model.Float(f), nil
	case bool:
		return model.Boolean(t), nil
	case nil:
		return model.Null{}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
