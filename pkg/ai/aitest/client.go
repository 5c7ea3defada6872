// Package aitest provides a scripted ai.Client.
package aitest

import (
	"context"
	"sync"

	"mein-essen/pkg/ai"
)

type Client struct {
	mu sync.Mutex

	Response string
	Err      error
	Inline   bool

	Calls     int
	LastReq   ai.CompletionRequest
	LastImage *ai.ImageInput
}

func (c *Client) InlineImages() bool { return c.Inline }

func (c *Client) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls++
	c.LastReq = req
	return c.Response, c.Err
}

func (c *Client) CompleteWithImage(ctx context.Context, req ai.CompletionRequest, image ai.ImageInput) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls++
	c.LastReq = req
	c.LastImage = &image
	return c.Response, c.Err
}
