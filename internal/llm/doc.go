// Package llm categorizes transactions with a language model.
//
// Backends (Ollama, Yandex, OpenAI, Anthropic, Gemini) only turn a prompt
// into text. The Classifier builds the prompt, applies timeouts, rate limits
// and caching, and validates the answer. It never fails: any problem resolves
// to the fallback category with an explanatory comment.
package llm
