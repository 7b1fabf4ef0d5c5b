package rundown_test

import (
	"context"
	"errors"
	"testing"

	"vizmse/internal/services"
	"vizmse/internal/testsupport"
	"vizmse/internal/treestore"
)

func TestListTemplates(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, templates, testsupport.Template("lower", "a"))
		testsupport.Seed(t, store, templates, testsupport.Template("full", "b"))
	}))
	names, err := f.rundown.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if !equalStrings(names, []string{"lower", "full"}) {
		t.Fatalf("unexpected templates %v", names)
	}
	calls := f.pep.Calls()
	if len(calls) != 1 || calls[0].Path != templates || calls[0].Depth != 1 {
		t.Fatalf("unexpected calls %#v", calls)
	}
}

func TestGetTemplateFieldsInDeclaredOrder(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, templates, testsupport.Template("lower", "title", "name", "b_sub"))
	}))
	tmpl, err := f.rundown.GetTemplate(context.Background(), "lower")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if !equalStrings(tmpl.Fields, []string{"title", "name", "b_sub"}) {
		t.Fatalf("unexpected declared fields %v", tmpl.Fields)
	}
	if !equalStrings(tmpl.SortedFields(), []string{"b_sub", "name", "title"}) {
		t.Fatalf("unexpected sorted fields %v", tmpl.SortedFields())
	}
	if !equalStrings(tmpl.Fields, []string{"title", "name", "b_sub"}) {
		t.Fatal("SortedFields must not reorder the declared fields")
	}
}

func TestGetTemplateStructuredModel(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, templates,
			`<template name="tree"><entry name="model_xml"><model><schema><fielddef name="z"/><fielddef name="a"/></schema></model></entry></template>`)
	}))
	tmpl, err := f.rundown.GetTemplate(context.Background(), "tree")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if !equalStrings(tmpl.Fields, []string{"z", "a"}) {
		t.Fatalf("unexpected fields %v", tmpl.Fields)
	}
}

func TestGetTemplateWithoutModel(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, templates, `<template name="bare"><entry name="other">x</entry></template>`)
	}))
	if _, err := f.rundown.GetTemplate(context.Background(), "bare"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.rundown.GetTemplate(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing template, got %v", err)
	}
}

func TestTemplateWithoutFieldsCreatesEmptyData(t *testing.T) {
	f := newFixture(t, withSeed(func(t *testing.T, store *treestore.Store) {
		testsupport.Seed(t, store, templates, testsupport.Template("plain"))
	}))
	el, err := f.rundown.CreateInternal(context.Background(), "plain", "p1", nil, "")
	if err != nil {
		t.Fatalf("CreateInternal failed: %v", err)
	}
	if len(el.Data) != 0 {
		t.Fatalf("expected no data, got %v", el.Data)
	}
	if _, err := f.rundown.CreateInternal(context.Background(), "plain", "p2", []string{"x"}, ""); !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
