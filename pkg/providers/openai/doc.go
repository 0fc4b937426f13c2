// Package openai implements the chat completions adapter for OpenAI and
// OpenAI-compatible endpoints (Ollama, vLLM, LM Studio) selected through
// ProviderConfig.BaseURL.
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:   "openai",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//
// CompletionRequest.JSONMode maps to response_format {"type": "json_object"}.
package openai
