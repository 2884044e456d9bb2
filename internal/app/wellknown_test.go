package app

import (
	"reflect"
	"testing"
)

func TestParseCoreLinks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{
			name:    "riot default",
			payload: `</riot/board>,</riot/ver>;ct=0,</shell/reboot>;title="reboot the node"`,
			want:    []string{"/riot/board", "/riot/ver", "/shell/reboot"},
		},
		{
			name:    "whitespace between entries",
			payload: `</a>, </b> ,</c>`,
			want:    []string{"/a", "/b", "/c"},
		},
		{
			name:    "garbage entries skipped",
			payload: `nonsense,<relative>,</ok>,<`,
			want:    []string{"/ok"},
		},
		{
			name:    "empty payload",
			payload: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCoreLinks([]byte(tt.payload)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseCoreLinks(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}
