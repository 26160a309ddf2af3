package claude

import "testing"

func TestNewNilConfigUsesDefaults(t *testing.T) {
	p := New(nil)
	if p.config == nil {
		t.Fatal("nil config should fall back to defaults")
	}
	if p.config.Model == "" {
		t.Errorf("default model not set")
	}
	if p.config.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", p.config.MaxTokens)
	}
}

func TestNewFillsMissingModel(t *testing.T) {
	p := New(&Config{APIKey: "key"})
	if p.config.Model == "" {
		t.Errorf("empty model should be defaulted")
	}
}
