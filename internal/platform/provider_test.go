package platform

import "testing"

func TestNewProvider_Unregistered(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	if err == nil {
		t.Fatal("expected error without a registered backend")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_Registered(t *testing.T) {
	orig := NewProviderFunc
	want := &Provider{}
	NewProviderFunc = func() (*Provider, error) { return want, nil }
	defer func() { NewProviderFunc = orig }()

	got, err := NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Error("expected registered provider to be returned")
	}
}

type stubClipboard struct{ text string }

func (s *stubClipboard) SetText(text string) error { s.text = text; return nil }

func TestProvider_Merge(t *testing.T) {
	own := &stubClipboard{}
	other := &stubClipboard{}
	p := &Provider{ClipboardManager: own}

	merged := p.Merge(&Provider{ClipboardManager: other})
	if merged.ClipboardManager != own {
		t.Error("expected existing capability to win")
	}

	empty := (&Provider{}).Merge(&Provider{ClipboardManager: other})
	if empty.ClipboardManager != other {
		t.Error("expected nil capability to be filled")
	}

	if (&Provider{}).Merge(nil) == nil {
		t.Error("expected non-nil result when merging nil")
	}
}
