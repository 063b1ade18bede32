package i18n

import "testing"

func TestBundle(t *testing.T) {
	contentBytes := []byte("greeting: こんにちは\nwelcome_user: こんにちは %s")

	bundle, err := newBundleFromBytes("ja", contentBytes)
	if err != nil {
		t.Fatalf("newBundleFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := bundle.T("greeting")
		want := "こんにちは"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := bundle.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := bundle.T("welcome_user", "Yuki")
		want := "こんにちは Yuki"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestLoadAll_EmbeddedLocales(t *testing.T) {
	bundles, err := LoadAll([]string{"en", "ja"})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, lc := range []string{"en", "ja"} {
		b, ok := bundles[lc]
		if !ok {
			t.Fatalf("missing bundle for %s", lc)
		}
		if got := b.T("error_invalid_model"); got == "error_invalid_model" {
			t.Errorf("locale %s missing error_invalid_model", lc)
		}
	}

	if _, err := LoadAll([]string{"xx"}); err == nil {
		t.Error("unsupported locale must fail to load")
	}
}
