package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// GitHubModelsBaseURL is the base URL for the GitHub Models API.
	// The OpenAI-compatible chat completions endpoint is at
	// {baseURL}/chat/completions.
	GitHubModelsBaseURL = "https://models.github.ai/inference"

	// GitHubAPIVersion is sent as X-GitHub-Api-Version on every request.
	GitHubAPIVersion = "2022-11-28"
)

// githubHeaderTransport implements openai.Doer and injects GitHub-specific headers
// into every request.
type githubHeaderTransport struct {
	base http.RoundTripper
}

func (t *githubHeaderTransport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", GitHubAPIVersion)
	return t.base.RoundTrip(req)
}

// NewGitHubModel creates a Model backed by the GitHub Models API through the
// LangChainGo OpenAI provider.
//
// The token must be a GitHub Personal Access Token (fine-grained) with the models:read
// permission. Model names use the publisher/model format, for example
// GitHubGPT41Mini ("openai/gpt-4.1-mini").
//
// Additional openai.Option values are applied after the defaults, so callers can
// override the base URL or HTTP client (tests point it at an httptest server).
//
// Example:
//
//	model, err := models.NewGitHubModel(models.GitHubGPT41Mini, os.Getenv("GITHUB_TOKEN"))
func NewGitHubModel(
	model string,
	token string,
	opts ...openai.Option,
) (*LCGWrapper, error) {
	if token == "" {
		return nil, errors.New(
			"github token is required: " +
				"create a fine-grained PAT with models:read " +
				"at https://github.com/settings/personal-access-tokens/new",
		)
	}
	if model == "" {
		model = DefaultGitHubModel
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GitHubModelsBaseURL),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(&githubHeaderTransport{
			base: http.DefaultTransport,
		}),
	}

	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}

	return NewLCGWrapper(llm).WithModelName(model), nil
}
