package branding

import "testing"

func TestIdentity(t *testing.T) {
	if AppName != "deliberate-thinking" {
		t.Fatalf("AppName = %q, want %q", AppName, "deliberate-thinking")
	}
	if Version == "" {
		t.Fatal("expected Version to be non-empty")
	}
}
