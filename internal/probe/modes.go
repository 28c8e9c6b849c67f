package probe

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// demoPrompts showcase the fine-tuned model's instruction following.
var demoPrompts = []string{
	"Explain quantum computing in simple terms:",
	"Write a Python function to calculate fibonacci numbers:",
	"What are the benefits of using TPUs for machine learning?",
	"Describe the process of fine-tuning a large language model:",
}

const demoPause = 2 * time.Second

// RunDemo sequences the fixed demo prompts through the completion endpoint,
// pausing between calls. Cancelling the context stops the run between
// prompts.
func RunDemo(ctx context.Context, client *Client, out io.Writer) {
	fmt.Fprintln(out, "Running demo prompts...")

	for i, prompt := range demoPrompts {
		fmt.Fprintf(out, "\nDemo %d/%d: %s\n", i+1, len(demoPrompts), prompt)

		text := client.Complete(ctx, prompt, 150, 0.7)
		if text != "" {
			fmt.Fprintln(out, text)
		}

		if i == len(demoPrompts)-1 {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(demoPause):
		}
	}
}

// Interactive reads prompts from in and sends each through the completion
// endpoint until EOF, a quit command, or context cancellation.
func Interactive(ctx context.Context, client *Client, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Interactive mode - type 'quit' to exit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}

		prompt := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(prompt) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return
		case "":
			continue
		}

		text := client.Complete(ctx, prompt, 200, 0.7)
		if text != "" {
			fmt.Fprintln(out, text)
		}
	}
}
