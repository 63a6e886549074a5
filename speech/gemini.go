package speech

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	language "cloud.google.com/go/ai/generativelanguage/apiv1alpha"
	"cloud.google.com/go/ai/generativelanguage/apiv1alpha/generativelanguagepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/prototext"
)

// Client synthesizes speech through the GenerativeService gRPC API. The
// v1alpha request carries no speech configuration; speech-capable models
// answer a plain text prompt with inline audio parts, which is what
// Synthesize extracts. Voice selection needs the Live transport.
type Client struct {
	APIKey string
	Model  string

	genai         *language.GenerativeClient
	httpTransport http.RoundTripper
}

// SetHTTPTransport sets a custom HTTP transport for testing purposes.
// This must be called before Init.
func (c *Client) SetHTTPTransport(transport http.RoundTripper) {
	c.httpTransport = transport
}

// Init initializes the underlying Google Cloud Generative Language client.
func (c *Client) Init(ctx context.Context) error {
	if c.genai != nil {
		return nil
	} // Prevent re-initialization

	if c.APIKey == "" {
		c.APIKey = ResolveAPIKey("")
	}

	var opts []option.ClientOption
	if c.APIKey != "" {
		opts = append(opts, option.WithAPIKey(c.APIKey))
	} else {
		log.Println("API Key not provided, attempting Application Default Credentials (ADC).")
	}
	if c.httpTransport != nil {
		log.Println("Using custom HTTP transport for testing")
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: c.httpTransport,
		}))
	}

	loggableOpts := []string{}
	for _, o := range opts {
		optStr := fmt.Sprintf("%T", o)
		if !strings.Contains(optStr, "WithAPIKey") {
			loggableOpts = append(loggableOpts, optStr)
		} else {
			loggableOpts = append(loggableOpts, "WithAPIKey(****)")
		}
	}
	log.Printf("Initializing GenerativeClient with options: %v", loggableOpts)

	client, err := language.NewGenerativeClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create generative client: %w", err)
	}
	c.genai = client
	return nil
}

// InitWithGRPCConn initializes the client using a pre-configured gRPC
// connection. This is primarily for testing with replayed connections.
func (c *Client) InitWithGRPCConn(ctx context.Context, conn *grpc.ClientConn) error {
	if c.genai != nil {
		return nil
	}

	client, err := language.NewGenerativeClient(ctx, option.WithGRPCConn(conn))
	if err != nil {
		return fmt.Errorf("failed to create generative client with gRPC connection: %w", err)
	}
	c.genai = client
	return nil
}

// Synthesize asks the model to speak text and returns the first audio part
// of the response.
func (c *Client) Synthesize(ctx context.Context, text string) (*Audio, error) {
	if c.genai == nil {
		if err := c.Init(ctx); err != nil {
			return nil, err
		}
	}

	request := &generativelanguagepb.GenerateContentRequest{
		Model: normalizeModel(c.Model),
		Contents: []*generativelanguagepb.Content{
			{
				Parts: []*generativelanguagepb.Part{
					{
						Data: &generativelanguagepb.Part_Text{
							Text: text,
						},
					},
				},
				Role: "user",
			},
		},
	}
	if os.Getenv("DEBUG_QUIZVOICE") != "" {
		log.Printf("Sending Content Request: %s", prototext.Format(request))
	}

	resp, err := c.genai.GenerateContent(ctx, request)
	if err != nil {
		if s, ok := status.FromError(err); ok {
			log.Printf("GenerateContent failed: %s (code %s)", s.Message(), s.Code())
		}
		return nil, fmt.Errorf("speech generation failed: %w", err)
	}

	return ExtractAudio(resp)
}

// Close closes the underlying client connection.
func (c *Client) Close() error {
	if c.genai != nil {
		err := c.genai.Close()
		c.genai = nil
		return err
	}
	return nil
}

// ExtractAudio pulls the first audio inline-data part out of a
// GenerateContentResponse.
func ExtractAudio(resp *generativelanguagepb.GenerateContentResponse) (*Audio, error) {
	if resp == nil {
		return nil, ErrNoAudio
	}
	if os.Getenv("DEBUG_QUIZVOICE") != "" {
		log.Printf("Received Raw Response: %s", prototext.Format(resp))
	}

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				inlineData := part.GetInlineData()
				if inlineData == nil {
					continue
				}
				log.Printf("Part contains inline data (%s, %d bytes)",
					inlineData.MimeType, len(inlineData.Data))
				if !strings.HasPrefix(inlineData.MimeType, "audio/") {
					continue
				}
				return &Audio{
					PCM:      inlineData.Data,
					Format:   formatFromMime(inlineData.MimeType),
					MimeType: inlineData.MimeType,
				}, nil
			}
		}
	}

	if feedback := feedbackText(resp.GetPromptFeedback()); feedback != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, feedback)
	}
	return nil, ErrNoAudio
}

// feedbackText formats prompt feedback into a string.
func feedbackText(promptFeedback *generativelanguagepb.GenerateContentResponse_PromptFeedback) string {
	if promptFeedback == nil {
		return ""
	}
	var feedbackParts []string
	if promptFeedback.BlockReason != generativelanguagepb.GenerateContentResponse_PromptFeedback_BLOCK_REASON_UNSPECIFIED {
		reasonStr := promptFeedback.BlockReason.String()
		log.Printf("Received prompt feedback: Blocked - %s", reasonStr)
		feedbackParts = append(feedbackParts, fmt.Sprintf("[Blocked: %s]", reasonStr))
	}
	for _, rating := range promptFeedback.SafetyRatings {
		if rating.Probability != generativelanguagepb.SafetyRating_NEGLIGIBLE && rating.Probability != generativelanguagepb.SafetyRating_LOW {
			feedbackParts = append(feedbackParts, fmt.Sprintf("[Safety: %s - %s]", rating.Category.String(), rating.Probability.String()))
		}
	}
	return strings.Join(feedbackParts, " ")
}

// ResolveAPIKey returns the first non-empty key among the explicit value and
// the conventional environment variables.
func ResolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, env := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "GOOGLE_GENERATIVE_AI_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return ""
}
