package main

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestColorToX11RendersRGBColorHex(t *testing.T) {
	got := colorToX11(termenv.RGBColor("#ff0080"))
	want := "rgb:ffff/0000/8080"
	if got != want {
		t.Fatalf("colorToX11 = %q, want %q", got, want)
	}
}

func TestColorToX11NilIsEmpty(t *testing.T) {
	if got := colorToX11(nil); got != "" {
		t.Fatalf("colorToX11(nil) = %q, want empty", got)
	}
}
