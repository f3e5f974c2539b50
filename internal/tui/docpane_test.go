package tui

import (
	"reflect"
	"testing"

	"github.com/wethinkt/go-folio/internal/summary"
)

func TestHighlightSpans(t *testing.T) {
	lines := []string{"alpha beta", "gamma délta", "epsilon"}

	tests := []struct {
		name string
		hl   summary.Highlight
		want map[int]span
	}{
		{"snippet", summary.Highlight{Snippet: "gamma"}, map[int]span{1: {0, 5}}},
		{"snippet wins over range", summary.Highlight{Snippet: "eps", CharStart: 0, CharEnd: 5}, map[int]span{2: {0, 3}}},
		{"range across lines", summary.Highlight{CharStart: 6, CharEnd: 16}, map[int]span{0: {6, 10}, 1: {0, 5}}},
		{"range with multibyte runes", summary.Highlight{CharStart: 17, CharEnd: 22}, map[int]span{1: {6, 12}}},
		{"missing snippet falls back to range", summary.Highlight{Snippet: "zeta", CharStart: 0, CharEnd: 5}, map[int]span{0: {0, 5}}},
		{"nothing to mark", summary.Highlight{Snippet: "zeta"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := highlightSpans(lines, tt.hl); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("highlightSpans = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocPaneSettle(t *testing.T) {
	d := newDocPane(&cmdQueue{}, &Styles{}, true)
	d.setSize(20, 10)

	if d.settle() {
		t.Fatal("settle on an idle pane should not move it")
	}

	d.animating = true
	d.target = 0
	d.top = 0
	if d.settle() || d.animating {
		t.Fatalf("settle should stop the animation, animating = %v", d.animating)
	}
}
