// Package narrator calls the external text-generation service that continues
// each room's story.
package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fableforge/fableforge/internal/dice"
)

// systemPrompt is the fixed framing sent with every request. The service is
// asked to stay an impartial narrator, resolve ambiguous actions with implied
// d20 checks, and close each reply with a hook for the group.
const systemPrompt = "You are an expert narrator for a multiplayer text " +
	"adventure. Be narrative, fair, and engaging. Incorporate player actions, " +
	"resolve ambiguous outcomes with implied d20 rolls, track simple stats " +
	"(HP, inventory). End with hooks that invite group decisions."

// ErrTimeout indicates the narrator service did not answer within the
// configured deadline.
var ErrTimeout = errors.New("narrator request timed out")

// UpstreamError indicates the narrator service answered with a non-success
// HTTP status.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("narrator upstream returned status %d", e.Status)
}

// Result is a single narration turn.
type Result struct {
	// Text is the narrator's reply, possibly extended with a die-roll
	// annotation.
	Text string
	// GrantItem reports whether the reply implies the player found loot.
	GrantItem bool
}

// Narrator produces a story continuation for a player action.
type Narrator interface {
	Narrate(ctx context.Context, story, action, playerContext string) (Result, error)
}

// Config holds the connection settings for the narrator service.
type Config struct {
	URL         string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client talks to an OpenRouter-style chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	cfg        Config
	roller     *dice.Roller
	logger     *slog.Logger
}

// NewClient creates a narrator client. The roller supplies the d20 used for
// roll annotations.
func NewClient(cfg Config, roller *dice.Roller) *Client {
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		roller:     roller,
		logger:     slog.Default().With("service", "narrator"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Narrate composes a request from the room story, the player action, and the
// player context, and returns the (possibly roll-annotated) reply.
//
// No room lock is held by callers across this call; the story argument is a
// snapshot taken before, and any append happens after.
func (c *Client) Narrate(ctx context.Context, story, action, playerContext string) (Result, error) {
	prompt := fmt.Sprintf("Current story state: %s\nContext: %s\nPlayer action: %s\n", story, playerContext, action)
	prompt += "As narrator, respond immersively: describe scenes, outcomes (use dice if implied, e.g. attack rolls), NPCs, and advance the plot. Keep it concise. End with hooks for the players."

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding narrator request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("building narrator request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, ErrTimeout
		}
		return Result{}, fmt.Errorf("narrator transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, &UpstreamError{Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("decoding narrator response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, errors.New("narrator response had no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if ImpliesRoll(text) {
		roll := c.roller.D20()
		text += fmt.Sprintf(" (Narrator rolls: %d on d20)", roll)
	}

	return Result{
		Text:      text,
		GrantItem: ImpliesLoot(text),
	}, nil
}
