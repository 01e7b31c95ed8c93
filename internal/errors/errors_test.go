package errors

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "routing error",
			code:    "E120",
			wantMsg: "No routes configured",
			wantCat: CategoryRouting,
		},
		{
			name:    "loader error",
			code:    "E141",
			wantMsg: "Component import failed",
			wantCat: CategoryLoader,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E102").WithDetail("server.address is empty")
	want := "E102: Invalid configuration value: server.address is empty"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := Newf(CategoryCLI, "bad flag %q", "--x")
	if got := plain.Error(); got != `bad flag "--x"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New("E101").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New("E101")) {
		t.Error("errors.Is should match errors with the same code")
	}
	if stderrors.Is(err, New("E102")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E101") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("E120")
	if got := FromError(orig, "E101"); got != orig {
		t.Error("FromError should return an existing *Error unchanged")
	}

	got := FromError(stderrors.New("boom"), "E141")
	if got.Code != "E141" || got.Wrapped == nil {
		t.Errorf("FromError = %+v, want code E141 with wrapped cause", got)
	}
}

func TestWithLocationFromError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vnav.yaml")
	content := "routes:\n  - path: /\n    component: home\n  bad\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("E101").WithLocationFromError(path, stderrors.New("yaml: line 4: could not find expected ':'"))
	if err.Location == nil {
		t.Fatal("expected a location")
	}
	if err.Location.Line != 4 {
		t.Errorf("Line = %d, want 4", err.Location.Line)
	}
	if len(err.Context) == 0 {
		t.Error("expected context lines")
	}

	noLine := New("E101").WithLocationFromError(path, stderrors.New("unexpected EOF"))
	if noLine.Location != nil {
		t.Error("no location expected when the message has no line")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E120").WithSuggestion("Add at least one route to vnav.yaml")
	out := err.Format()

	for _, want := range []string{"ERROR E120: No routes configured", "Hint: Add at least one route", "Learn more: https://vango.dev/docs/vnav/errors/E120"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "E120: No routes configured" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Print() = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, New("E160"))
	if !strings.Contains(buf.String(), "E160") {
		t.Errorf("Print() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	for _, l := range lines {
		if len(l) > 9 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
