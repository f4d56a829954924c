package llm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// ConsoleClient is an interactive debugging backend: it prints the prompt
// to the terminal and reads directives typed by a human. An empty line
// terminates the response.
type ConsoleClient struct {
	model  string
	reader *bufio.Reader
}

// NewConsoleClient creates a console-backed client
func NewConsoleClient(model string) *ConsoleClient {
	if model == "" {
		model = "console"
	}
	return &ConsoleClient{
		model:  model,
		reader: bufio.NewReader(os.Stdin),
	}
}

// Generate prints the conversation and collects typed directives
func (c *ConsoleClient) Generate(ctx context.Context, req Request) (*Response, error) {
	fmt.Println("\n=== console model: incoming prompt ===")
	for _, msg := range req.Messages {
		fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
	}
	fmt.Println("=== type directives, empty line to send ===")

	var lines []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("console input error: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}

	return &Response{
		Content: strings.Join(lines, "\n"),
		Model:   c.model,
	}, nil
}

// GetModel returns the model name
func (c *ConsoleClient) GetModel() string { return c.model }

// GetProvider returns the provider name
func (c *ConsoleClient) GetProvider() string { return "console" }

// IsAvailable always reports true for the console
func (c *ConsoleClient) IsAvailable(ctx context.Context) bool { return true }
