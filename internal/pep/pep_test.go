package pep_test

import (
	"errors"
	"testing"

	"vizmse/internal/pep"
	"vizmse/internal/services"
)

func TestParseFragmentAndEncodeRoundTrip(t *testing.T) {
	const fragment = `<element name="intro" guid="g-1"><ref name="master_template">/storage/shows/{S}/mastertemplates/lower</ref><entry name="data"><entry name="a">x &amp; y</entry></entry></element>`
	node, err := pep.ParseFragment(fragment)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if node.Tag != "element" || node.Name() != "intro" {
		t.Fatalf("unexpected root: %+v", node)
	}
	if len(node.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(node.Children))
	}
	data := node.Children[1]
	if got := data.Children[0].Text; got != "x & y" {
		t.Fatalf("expected unescaped text, got %q", got)
	}

	again, err := pep.ParseFragment(node.XML())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.XML() != node.XML() {
		t.Fatalf("encoding not stable:\n%s\n%s", node.XML(), again.XML())
	}
}

func TestParseFragmentDropsIndentation(t *testing.T) {
	node, err := pep.ParseFragment("<elements>\n  <ref>/external/pilotdb/elements/7</ref>\n</elements>")
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if node.Text != "" {
		t.Fatalf("expected whitespace text to be dropped, got %q", node.Text)
	}
	if node.Children[0].Text != "/external/pilotdb/elements/7" {
		t.Fatalf("unexpected ref text %q", node.Children[0].Text)
	}
}

func TestParseFragmentRejectsGarbage(t *testing.T) {
	for _, fragment := range []string{"", "plain text", "<a/><b/>", "<a>"} {
		if _, err := pep.ParseFragment(fragment); err == nil {
			t.Fatalf("expected error for %q", fragment)
		}
	}
}

func TestNodeEncodeEscapesAttributes(t *testing.T) {
	node := pep.NewNode("ref", "viz_program", `A "B" <C>`).WithText("/external/pilotdb/elements/1")
	want := `<ref viz_program="A &#34;B&#34; &lt;C&gt;">/external/pilotdb/elements/1</ref>`
	if got := node.XML(); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if got := pep.NewNode("elements").XML(); got != "<elements/>" {
		t.Fatalf("unexpected empty element encoding %s", got)
	}
}

func TestFlattenKeysChildren(t *testing.T) {
	node, err := pep.ParseFragment(`<playlist name="{P}">
  <entry name="active_profile">MOSART</entry>
  <elements>
    <ref available="0.00" viz_program="FULL1">/external/pilotdb/elements/42</ref>
    <ref available="0.00">/external/pilotdb/elements/7</ref>
  </elements>
</playlist>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}

	flat := pep.Flatten(node)
	if flat.Name != "{P}" {
		t.Fatalf("unexpected name %q", flat.Name)
	}
	if got := flat.Get("active_profile"); got != "MOSART" {
		t.Fatalf("expected active profile value, got %q", got)
	}
	elements := flat.Child("elements")
	if elements == nil {
		t.Fatal("expected elements child keyed by tag")
	}
	if keys := elements.ChildKeys(); len(keys) != 2 || keys[0] != "0" || keys[1] != "1" {
		t.Fatalf("expected positional keys for unnamed refs, got %v", keys)
	}
	first := elements.Child("0")
	if first.Value != "/external/pilotdb/elements/42" {
		t.Fatalf("unexpected ref value %q", first.Value)
	}
	if v, ok := first.Attr("viz_program"); !ok || v != "FULL1" {
		t.Fatalf("expected viz_program attribute, got %q %v", v, ok)
	}
	if _, ok := elements.Child("1").Attr("viz_program"); ok {
		t.Fatal("second ref should have no channel attribute")
	}
}

func TestFlattenDuplicateNamesFallBackToIndex(t *testing.T) {
	node := pep.NewNode("elements").Append(
		pep.NewNode("element", "name", "a"),
		pep.NewNode("element", "name", "a"),
	)
	flat := pep.Flatten(node)
	if keys := flat.ChildKeys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "1" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestFlattenPositionalKeySkipsTakenNames(t *testing.T) {
	node := pep.NewNode("elements").Append(
		pep.NewNode("x", "name", "1"),
		pep.NewNode("ref").WithText("a"),
		pep.NewNode("ref").WithText("b"),
	)
	flat := pep.Flatten(node)
	keys := flat.ChildKeys()
	if len(keys) != 3 || keys[0] != "1" || keys[1] != "#1" || keys[2] != "2" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if len(flat.Children) != 3 {
		t.Fatalf("expected three distinct children, got %d", len(flat.Children))
	}
	if got := flat.Child("1").Tag; got != "x" {
		t.Fatalf("named child overwritten, got tag %q", got)
	}
	if got := flat.Child("#1").Value; got != "a" {
		t.Fatalf("unexpected value under #1: %q", got)
	}
}

func TestFlattenValues(t *testing.T) {
	node := pep.NewNode("entry", "name", "data").Append(
		pep.NewNode("entry", "name", "b").WithText("2"),
		pep.NewNode("entry", "name", "a").WithText("1"),
	)
	values := pep.Flatten(node).Values()
	if values["a"] != "1" || values["b"] != "2" || len(values) != 2 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestInexistentErrorMatchesNotFound(t *testing.T) {
	var err error = &pep.InexistentError{RequestID: 3, Path: "/storage/shows/{S}/elements/x"}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatal("expected inexistent error to match ErrNotFound")
	}
	var inexistent *pep.InexistentError
	if !errors.As(err, &inexistent) || inexistent.RequestID != 3 {
		t.Fatalf("expected errors.As to recover request id, got %v", inexistent)
	}
}

func TestLocationString(t *testing.T) {
	cases := map[pep.Location]string{
		pep.LocationFirst:  "first",
		pep.LocationLast:   "last",
		pep.LocationBefore: "before",
		pep.LocationAfter:  "after",
	}
	for loc, want := range cases {
		if got := loc.String(); got != want {
			t.Fatalf("Location(%d).String() = %q want %q", loc, got, want)
		}
	}
}
