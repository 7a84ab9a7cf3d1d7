package version

import "testing"

// setBuildInfo подменяет значения, которые обычно вшивает -ldflags,
// и восстанавливает их после теста.
func setBuildInfo(t *testing.T, v, c, d string) {
	t.Helper()

	prevVersion, prevCommit, prevDate := version, commit, date
	version, commit, date = v, c, d
	t.Cleanup(func() {
		version, commit, date = prevVersion, prevCommit, prevDate
	})
}

func TestDefaults(t *testing.T) {
	v, c, d := Info()
	if v == "" || c == "" || d == "" {
		t.Fatalf("build info must never be empty: version=%q commit=%q date=%q", v, c, d)
	}
	if GetVersion() != v || GetCommit() != c || GetDate() != d {
		t.Fatal("accessors must agree with Info")
	}
}

func TestString_LdflagsValues(t *testing.T) {
	setBuildInfo(t, "1.4.0", "abc1234", "2026-03-15")

	want := "version=1.4.0 commit=abc1234 date=2026-03-15"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := GetVersion(); got != "1.4.0" {
		t.Errorf("GetVersion() = %q, want 1.4.0", got)
	}
}

func TestString_DevBuild(t *testing.T) {
	setBuildInfo(t, "dev", "unknown", "unknown")

	if got := String(); got != "version=dev commit=unknown date=unknown" {
		t.Errorf("String() = %q", got)
	}
}
