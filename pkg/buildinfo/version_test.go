package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(got, "commit: "+Commit) {
		t.Errorf("Template() missing commit: %q", got)
	}
}

func TestGet(t *testing.T) {
	if got, want := Get(), (Info{Version: Version, Commit: Commit, Date: Date}); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}
