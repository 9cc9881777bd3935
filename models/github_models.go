package models

// GitHub Models identifiers use the "publisher/model-name" format.
//
// The list covers models that support tool calling, which the Worker needs. For the
// full catalog query the GitHub Models REST API:
//
//	curl -H "Authorization: Bearer $GITHUB_TOKEN" \
//	  https://models.github.ai/catalog/models
const (
	GitHubGPT41     = "openai/gpt-4.1"
	GitHubGPT41Mini = "openai/gpt-4.1-mini"
	GitHubGPT41Nano = "openai/gpt-4.1-nano"
	GitHubGPT4o     = "openai/gpt-4o"
	GitHubGPT4oMini = "openai/gpt-4o-mini"

	GitHubLlama4Scout   = "meta-llama/llama-4-scout-17b-16e-instruct"
	GitHubMistralMedium = "mistralai/mistral-medium-3"
	GitHubDeepSeekV3    = "deepseek/deepseek-v3-0324"

	// DefaultGitHubModel matches the default OpenAI model of the CLI.
	DefaultGitHubModel = GitHubGPT41Mini
)
