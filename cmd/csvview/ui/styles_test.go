package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("CSVVIEW_DARK_MODE", "1")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme when CSVVIEW_DARK_MODE=1")
	}

	t.Setenv("CSVVIEW_DARK_MODE", "")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme when CSVVIEW_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black background")
	}
}

func TestThemeFor(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("CSVVIEW_DARK_MODE", "")

	if !ThemeFor("dark").IsDark {
		t.Error("dark")
	}
	if ThemeFor("light").IsDark {
		t.Error("light")
	}
	if ThemeFor("auto").IsDark {
		t.Error("auto should detect light here")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if got := s.RenderDivider(0); got == "" {
		t.Error("divider should never be empty")
	}
}
