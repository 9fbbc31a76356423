package bundle

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func allBytes() []byte {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestArrayProfile_MatchesLegacyLayout(t *testing.T) {
	got := ArrayProfile{}.Declare("ASSET_A", []byte{0x00, 0xff, 0x10}, DefaultWrap)
	want := "static const unsigned char ASSET_A[] = {\n\t0x00, 0xFF, 0x10,\n};"
	if got != want {
		t.Fatalf("unexpected declaration\nwant=%q\ngot =%q", want, got)
	}
}

func TestArrayProfile_EmptyData(t *testing.T) {
	got := ArrayProfile{}.Declare("ASSET_EMPTY", nil, DefaultWrap)
	want := "static const unsigned char ASSET_EMPTY[] = {\n\t\n};"
	if got != want {
		t.Fatalf("unexpected declaration\nwant=%q\ngot =%q", want, got)
	}
}

func TestArrayProfile_WrapsThirteenTokensPerEightyColumns(t *testing.T) {
	got := ArrayProfile{}.Declare("ASSET_W", make([]byte, 14), DefaultWrap)
	lines := strings.Split(got, "\n")
	// header, two body lines, closing brace
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), got)
	}
	first := strings.TrimPrefix(lines[1], "\t")
	if n := strings.Count(first, "0x"); n != 13 {
		t.Fatalf("expected 13 tokens on the first line, got %d", n)
	}
	if len(first) > DefaultWrap {
		t.Fatalf("line exceeds wrap width: %d", len(first))
	}
	if lines[2] != "\t0x00," {
		t.Fatalf("unexpected second line %q", lines[2])
	}
}

func TestStringProfile_Layout(t *testing.T) {
	got := StringProfile{}.Declare("ASSET_S", []byte{0x41, 0x00, 0xfe}, DefaultWrap)
	want := "static const char ASSET_S[] =\n\t\"\\x41\\x00\\xFE\";"
	if got != want {
		t.Fatalf("unexpected declaration\nwant=%q\ngot =%q", want, got)
	}

	empty := StringProfile{}.Declare("ASSET_E", nil, DefaultWrap)
	if empty != `static const char ASSET_E[] = "";` {
		t.Fatalf("unexpected empty declaration %q", empty)
	}
}

func TestStringProfile_WrapsAtWidth(t *testing.T) {
	got := StringProfile{}.Declare("ASSET_S", make([]byte, 21), 80)
	lines := strings.Split(got, "\n")
	// 20 escapes fit in 80 columns, the 21st spills.
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[2] != "\t\"\\x00\";" {
		t.Fatalf("unexpected last line %q", lines[2])
	}
}

func TestProfiles_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  {},
		"zero":   {0x00},
		"zeros":  make([]byte, 100),
		"all":    allBytes(),
		"quote":  []byte(`"};\`),
		"single": {0x7f},
	}
	for _, p := range []Profile{ArrayProfile{}, StringProfile{}} {
		for name, data := range inputs {
			text := p.Declare("ASSET_X", data, DefaultWrap)
			decls, err := p.Decode(text)
			if err != nil {
				t.Fatalf("%s/%s: decode: %v", p.Name(), name, err)
			}
			if len(decls) != 1 || decls[0].Identifier != "ASSET_X" {
				t.Fatalf("%s/%s: unexpected declarations %+v", p.Name(), name, decls)
			}
			if !bytes.Equal(decls[0].Data, data) {
				t.Fatalf("%s/%s: round trip mismatch\nwant=%x\ngot =%x", p.Name(), name, data, decls[0].Data)
			}
		}
	}
}

func TestProfiles_WrapInvariance(t *testing.T) {
	data := allBytes()
	for _, p := range []Profile{ArrayProfile{}, StringProfile{}} {
		var texts []string
		for _, wrap := range []int{1, 7, 40, 80, 200, 10000} {
			text := p.Declare("ASSET_W", data, wrap)
			texts = append(texts, text)
			decls, err := p.Decode(text)
			if err != nil {
				t.Fatalf("%s wrap=%d: decode: %v", p.Name(), wrap, err)
			}
			if !bytes.Equal(decls[0].Data, data) {
				t.Fatalf("%s wrap=%d: bytes changed", p.Name(), wrap)
			}
		}
		if texts[0] == texts[len(texts)-1] {
			t.Fatalf("%s: expected wrap width to change line breaks", p.Name())
		}
	}
}

func TestDecode_RejectsMalformedText(t *testing.T) {
	cases := []struct {
		p    Profile
		text string
	}{
		{ArrayProfile{}, "static const unsigned char ASSET_A[] = {\n\t0xZZ,\n};"},
		{ArrayProfile{}, "int x;\nstatic const unsigned char ASSET_A[] = {\n\t0x00,\n};"},
		{ArrayProfile{}, "static const unsigned char ASSET_A[] = {\n\t0x00,\n};\ngarbage"},
		{StringProfile{}, "static const char ASSET_A[] =\n\t\"\\x0\";"},
		{StringProfile{}, "static const char ASSET_A[] =\n\t\"AB\";"},
		{StringProfile{}, "static const char ASSET_A[] = x \"\";"},
	}
	for i, tc := range cases {
		if _, err := tc.p.Decode(tc.text); !errors.Is(err, ErrMalformed) {
			t.Fatalf("case %d: expected ErrMalformed, got %v", i, err)
		}
	}
}

func TestProfileByName(t *testing.T) {
	for _, name := range []string{"array", "STRING", " array "} {
		if _, err := ProfileByName(name); err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
	}
	if _, err := ProfileByName("go"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}
