package provider

import "testing"

func TestProviderNameForBaseURL(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{"", "openai"},
		{"https://api.openai.com/v1", "openai"},
		{"https://generativelanguage.googleapis.com/v1beta/openai/", "gemini"},
		{"https://api.deepseek.com/v1", "deepseek"},
		{"https://api.moonshot.cn/v1", "kimi"},
		{"https://dashscope.aliyuncs.com/compatible-mode/v1", "qwen"},
		{"https://api.groq.com/openai/v1", "groq"},
	}
	for _, tt := range tests {
		if got := providerNameForBaseURL(tt.baseURL); got != tt.expected {
			t.Errorf("providerNameForBaseURL(%q) = %q, want %q", tt.baseURL, got, tt.expected)
		}
	}
}

func TestOpenAIProvider_Metadata(t *testing.T) {
	p := &OpenAIProvider{model: "gemini-1.5-flash", name: "gemini"}
	if p.Name() != "gemini" {
		t.Errorf("expected name 'gemini', got %q", p.Name())
	}
	if p.DefaultModel() != "gemini-1.5-flash" {
		t.Errorf("expected model 'gemini-1.5-flash', got %q", p.DefaultModel())
	}
}

func TestAnthropicProvider_Metadata(t *testing.T) {
	p := NewAnthropicProvider("test-key", "")
	if p.Name() != "anthropic" {
		t.Errorf("expected name 'anthropic', got %q", p.Name())
	}
	if p.DefaultModel() == "" {
		t.Error("expected a non-empty default model")
	}
}

func TestBuildOpenAIMessages_RoleMapping(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there"},
		{Role: "system", Content: "ignored unknown role"},
	}
	params := buildOpenAIMessages(msgs)
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if params[0].OfUser == nil {
		t.Error("first message should map to a user param")
	}
	if params[1].OfAssistant == nil {
		t.Error("second message should map to an assistant param")
	}
}

func TestBuildAnthropicMessages_RoleMapping(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there"},
	}
	params := buildAnthropicMessages(msgs)
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if params[0].Role != "user" {
		t.Errorf("first param role = %q, want user", params[0].Role)
	}
	if params[1].Role != "assistant" {
		t.Errorf("second param role = %q, want assistant", params[1].Role)
	}
}
