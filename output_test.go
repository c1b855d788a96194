package tjdecode

import "testing"

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		infix string
		want  string
	}{
		{"foo.bar", "", "foo.dec.bar"},
		{"foo", "", "foo.dec"},
		{"/game/data/items.json", "", "/game/data/items.dec.json"},
		{"/game/img/hero.png", ".plain", "/game/img/hero.plain.png"},
		{"archive.tar.gz", "", "archive.tar.dec.gz"},
		{".hidden", "", ".hidden.dec"},
		{"trailing.", "", "trailing..dec"},
		{"dir.d/noext", "", "dir.d/noext.dec"},
		{"./rel/x.txt", "", "rel/x.dec.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultOutputPath(tt.name, tt.infix); got != tt.want {
				t.Errorf("DefaultOutputPath(%q, %q) = %q, want %q", tt.name, tt.infix, got, tt.want)
			}
		})
	}
}

func TestMirrorOutputPath(t *testing.T) {
	tests := []struct {
		root, outDir, name string
		want               string
	}{
		{"/game", "/out", "/game/data/a.json", "/out/data/a.dec.json"},
		{"/game/", "/out", "/game/b.png", "/out/b.dec.png"},
		{"/", "/out", "/x/y", "/out/x/y.dec"},
		{"game", "out", "game/data/a.json", "out/data/a.dec.json"},
	}

	for _, tt := range tests {
		if got := MirrorOutputPath(tt.root, tt.outDir, tt.name, ""); got != tt.want {
			t.Errorf("MirrorOutputPath(%q, %q, %q) = %q, want %q", tt.root, tt.outDir, tt.name, got, tt.want)
		}
	}
}

func TestVariantExperimental(t *testing.T) {
	tests := []struct {
		variant Variant
		name    string
		want    bool
	}{
		{VariantBang, "data.json", true},
		{VariantBang, "DATA.JSON", true},
		{VariantBang, "script.lua", false},
		{VariantE, "image.json", false},
		{VariantZ, "anything.png", true},
		{VariantUnknown, "x.json", false},
	}

	for _, tt := range tests {
		if got := tt.variant.Experimental(tt.name); got != tt.want {
			t.Errorf("%v.Experimental(%q) = %v, want %v", tt.variant, tt.name, got, tt.want)
		}
	}
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"tj!":  VariantBang,
		"bang": VariantBang,
		"TJE":  VariantE,
		" z ":  VariantZ,
		"tjx":  VariantUnknown,
	}
	for input, want := range tests {
		got, ok := ParseVariant(input)
		if got != want || ok != (want != VariantUnknown) {
			t.Errorf("ParseVariant(%q) = %v, %v", input, got, ok)
		}
	}
}

func TestVariantSet(t *testing.T) {
	if !DefaultVariants.Has(VariantBang) || !DefaultVariants.Has(VariantE) || DefaultVariants.Has(VariantZ) {
		t.Errorf("DefaultVariants = %s", DefaultVariants)
	}
	if got := NewVariantSet(true, false, true).String(); got != "tj!,tjz" {
		t.Errorf("String() = %q", got)
	}
	if AllVariants.Has(VariantUnknown) {
		t.Error("VariantUnknown must never be a member")
	}
	if s := VariantSet(0).With(VariantUnknown); s != 0 {
		t.Errorf("With(VariantUnknown) = %v", s)
	}

	empty := NewVariantSet(false, false, false)
	if p := empty.Only(); p == nil || *p != 0 {
		t.Errorf("Only() = %v", p)
	}
}
