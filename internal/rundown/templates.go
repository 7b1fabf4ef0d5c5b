package rundown

import (
	"context"
	"fmt"
	"slices"

	"vizmse/internal/pep"
	"vizmse/internal/services"
)

// Template is a master template and the data fields its schema declares.
type Template struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// SortedFields returns the field names in ascending byte order, the order in
// which creation values are assigned.
func (t Template) SortedFields() []string {
	out := slices.Clone(t.Fields)
	slices.Sort(out)
	return out
}

// ListTemplates returns the names of the show's master templates.
func (r *Rundown) ListTemplates(ctx context.Context) ([]string, error) {
	if err := r.engine.CheckConnection(ctx); err != nil {
		return nil, err
	}
	res, err := r.pep().GetJS(ctx, r.templatesPath(), 1)
	if err != nil {
		return nil, err
	}
	entry := pep.Flatten(res.Tree)
	names := make([]string, 0, len(entry.Keys))
	for _, key := range entry.ChildKeys() {
		if key != "name" {
			names = append(names, key)
		}
	}
	return names, nil
}

// GetTemplate reads a master template and extracts the field names from its
// model_xml schema in declared order.
func (r *Rundown) GetTemplate(ctx context.Context, name string) (*Template, error) {
	if err := r.engine.CheckConnection(ctx); err != nil {
		return nil, err
	}
	res, err := r.pep().GetJS(ctx, r.templatePath(name), -1)
	if err != nil {
		return nil, err
	}
	entry := pep.Flatten(res.Tree)
	if entry.Child("model_xml") == nil && len(entry.Keys) == 1 {
		entry = entry.Child(entry.Keys[0])
	}
	model := entry.Child("model_xml")
	if model == nil {
		return nil, services.Wrap(services.ErrNotFound, "rundown", "get template",
			fmt.Sprintf("template %q has no model_xml entry", name), nil)
	}
	fields, err := templateFields(model)
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "rundown", "get template",
			fmt.Sprintf("template %q has an unreadable model", name), err)
	}
	return &Template{Name: name, Fields: fields}, nil
}

// templateFields reads model/schema[0]/fielddef/@name. The model is usually
// stored as XML text in the entry value; trees that carry it as child nodes
// are read directly.
func templateFields(model *pep.Entry) ([]string, error) {
	if model.Value != "" {
		root, err := pep.ParseFragment(model.Value)
		if err != nil {
			return nil, err
		}
		return schemaFieldsFromNode(root), nil
	}
	root := model.Child("model")
	if root == nil {
		return nil, nil
	}
	var schema *pep.Entry
	for _, key := range root.ChildKeys() {
		if child := root.Child(key); child.Tag == "schema" {
			schema = child
			break
		}
	}
	if schema == nil {
		return nil, nil
	}
	var fields []string
	for _, key := range schema.ChildKeys() {
		child := schema.Child(key)
		if child.Tag != "fielddef" {
			continue
		}
		if name, ok := child.Attr("name"); ok {
			fields = append(fields, name)
		}
	}
	return fields, nil
}

func schemaFieldsFromNode(model *pep.Node) []string {
	if model.Tag != "model" {
		return nil
	}
	for _, schema := range model.Children {
		if schema.Tag != "schema" {
			continue
		}
		var fields []string
		for _, def := range schema.Children {
			if def.Tag != "fielddef" {
				continue
			}
			if name, ok := def.Attr("name"); ok {
				fields = append(fields, name)
			}
		}
		return fields
	}
	return nil
}
