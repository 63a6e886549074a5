package speech

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	language "cloud.google.com/go/ai/generativelanguage/apiv1alpha"
	"cloud.google.com/go/ai/generativelanguage/apiv1alpha/generativelanguagepb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ListModels returns the available model names, optionally filtered by
// substring. Names are reported both with and without the "models/" prefix.
// When the API is unreachable the hardcoded list below is returned instead,
// so -list-models keeps working offline.
func (c *Client) ListModels(filter string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Getting list of supported models from the API")

	var clientOpts []option.ClientOption
	if key := ResolveAPIKey(c.APIKey); key != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(key))
	}
	if c.httpTransport != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(&http.Client{Transport: c.httpTransport}))
	}

	models, err := listModelsV1Alpha(ctx, clientOpts)
	if err != nil {
		log.Printf("Model listing failed, falling back to hardcoded list: %v", err)
		return filterModels(standardModels(), filter), nil
	}
	if len(models) == 0 {
		log.Println("No models returned from API, falling back to hardcoded list")
		return filterModels(standardModels(), filter), nil
	}

	return filterModels(models, filter), nil
}

// listModelsV1Alpha lists models using the v1alpha API
func listModelsV1Alpha(ctx context.Context, clientOpts []option.ClientOption) ([]string, error) {
	modelClient, err := language.NewModelClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	defer modelClient.Close()

	it := modelClient.ListModels(ctx, &generativelanguagepb.ListModelsRequest{})

	var models []string
	for {
		model, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating models: %w", err)
		}

		// Store both with and without 'models/' prefix for compatibility
		modelName := model.GetName()
		models = append(models, modelName)
		if strings.HasPrefix(modelName, "models/") {
			models = append(models, strings.TrimPrefix(modelName, "models/"))
		}
	}

	return models, nil
}

// standardModels returns the locally defined model list used when the API
// cannot be queried.
func standardModels() []string {
	return []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-2.0-flash",
		"gemini-2.0-flash-live-001",
		"gemini-2.0-flash-live-preview-04-09",
		"gemini-2.5-flash-live",
		"gemini-2.5-pro-live",
		"models/gemini-1.5-pro",
		"models/gemini-1.5-flash",
		"models/gemini-2.0-flash",
		"models/gemini-2.0-flash-live-001",
		"models/gemini-2.0-flash-live-preview-04-09",
		"models/gemini-2.5-flash-live",
		"models/gemini-2.5-pro-live",
	}
}

func filterModels(models []string, filter string) []string {
	if filter == "" {
		return models
	}
	var filtered []string
	for _, model := range models {
		if strings.Contains(strings.ToLower(model), strings.ToLower(filter)) {
			filtered = append(filtered, model)
		}
	}
	return filtered
}

// ValidateModel checks if a model name is in the list of supported models
func (c *Client) ValidateModel(modelName string) (bool, error) {
	// Accept all Gemini 2.0 and 2.5 models, including previews
	if strings.Contains(modelName, "gemini-2.0") || strings.Contains(modelName, "gemini-2.5") {
		return true, nil
	}

	validModels, err := c.ListModels("")
	if err != nil {
		return false, err
	}

	for _, model := range validModels {
		if model == modelName {
			return true, nil
		}
	}

	return false, nil
}
