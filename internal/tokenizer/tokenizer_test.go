package tokenizer

import (
	"testing"

	"github.com/arkodas/llamagate/internal/types"
)

// requireEncoding skips tests that need BPE tables when they cannot be
// loaded (tiktoken fetches them on first use).
func requireEncoding(t *testing.T, tok *TiktokenTokenizer) {
	t.Helper()
	if _, err := tok.CountTokens("hello", "gpt-4"); err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
}

func TestResolveEncoding(t *testing.T) {
	tok := New()

	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", EncodingO200kBase},
		{"gpt-4o-mini", EncodingO200kBase},
		{"gpt-4", EncodingCL100kBase},
		{"gpt-4-turbo", EncodingCL100kBase},
		{"gpt-3.5-turbo", EncodingCL100kBase},
		{"o1-preview", EncodingO200kBase},
		{"GPT-4O", EncodingO200kBase}, // case insensitive
		{"claude-3.5-sonnet", EncodingCL100kBase},
		{"some-unknown-model", EncodingCL100kBase},
	}

	for _, tt := range tests {
		if got := tok.resolveEncoding(tt.model); got != tt.want {
			t.Errorf("resolveEncoding(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestCountTokens(t *testing.T) {
	tok := New()
	requireEncoding(t, tok)

	count, err := tok.CountTokens("Hello, world!", "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count <= 0 {
		t.Errorf("expected positive token count, got %d", count)
	}

	empty, err := tok.CountTokens("", "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty != 0 {
		t.Errorf("expected 0 tokens for empty string, got %d", empty)
	}
}

func TestCountMessages_IncludesOverhead(t *testing.T) {
	tok := New()
	requireEncoding(t, tok)

	messages := []types.Message{
		types.NewTextMessage(types.RoleSystem, "You are helpful."),
		types.NewTextMessage(types.RoleUser, "Hi!"),
	}

	count, err := tok.CountMessages(messages, "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// At minimum: reply priming plus per-message overhead.
	minimum := replyPriming + len(messages)*messageOverhead
	if count <= minimum {
		t.Errorf("expected count > %d, got %d", minimum, count)
	}

	// More messages never count fewer tokens.
	shorter, err := tok.CountMessages(messages[:1], "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shorter >= count {
		t.Errorf("one message counted %d, two counted %d", shorter, count)
	}
}

func TestCountContent_ImageFlatRate(t *testing.T) {
	tok := New()

	// Image-only content needs no BPE tables, so this runs offline.
	content := types.Content{
		Parts: []types.ContentPart{
			{Type: types.ContentTypeImageURL, ImageURL: &types.ImageURL{URL: "https://example.test/a.png"}},
		},
	}

	count, err := tok.countContent(content, "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != imageFlatTokens {
		t.Errorf("image content = %d tokens, want %d", count, imageFlatTokens)
	}
}
