package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"gemma-pipeline/internal/probe"
)

var (
	ip          string
	port        string
	mode        string
	prompt      string
	serviceName string
	model       string
)

func main() {
	app := &cli.App{
		Name:  "testapi",
		Usage: "Exercise a deployed inference endpoint: health, models, completion, chat, demo, interactive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "ip",
				Usage:       "External IP address of the service; resolved via kubectl when omitted",
				Destination: &ip,
			},
			&cli.StringFlag{
				Name:        "port",
				Usage:       "Port number",
				Value:       "8000",
				Destination: &port,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "Mode: test, demo, or interactive",
				Value:       "test",
				Destination: &mode,
			},
			&cli.StringFlag{
				Name:        "prompt",
				Usage:       "Custom prompt for test mode",
				Destination: &prompt,
			},
			&cli.StringFlag{
				Name:        "service",
				Usage:       "Kubernetes service name used for IP lookup",
				Value:       "vllm-gemma-service",
				Destination: &serviceName,
			},
			&cli.StringFlag{
				Name:        "model",
				Usage:       "Model id to request",
				Value:       probe.DefaultModel,
				Destination: &model,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ip == "" {
		log.Printf("Looking up external IP of service %s...", serviceName)
		resolved, err := serviceIP(serviceName)
		if err != nil {
			return fmt.Errorf("could not determine a reachable IP: %w", err)
		}
		ip = resolved
	}

	baseURL := fmt.Sprintf("http://%s:%s", ip, port)
	log.Printf("Using API endpoint: %s", baseURL)

	client := probe.NewClient(baseURL, model)

	if !client.Health(ctx) {
		return fmt.Errorf("API at %s is not healthy; check that the service is running", baseURL)
	}
	fmt.Println("Health check passed")

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Printf("failed to list models: %v", err)
	} else {
		fmt.Println("Available models:")
		for _, id := range models {
			fmt.Printf("  - %s\n", id)
		}
	}

	switch mode {
	case "test":
		p := prompt
		if p == "" {
			p = "Explain machine learning in one paragraph:"
		}
		fmt.Printf("Generating response for: %q\n", p)
		if text := client.Complete(ctx, p, 200, 0.7); text != "" {
			fmt.Println(text)
		}
	case "demo":
		probe.RunDemo(ctx, client, os.Stdout)
	case "interactive":
		probe.Interactive(ctx, client, os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unknown mode %q (expected test, demo, or interactive)", mode)
	}

	fmt.Println("Testing completed")

	return nil
}

// serviceIP resolves the external IP of a LoadBalancer service via kubectl.
func serviceIP(name string) (string, error) {
	out, err := exec.Command(
		"kubectl", "get", "service", name,
		"-o", "jsonpath={.status.loadBalancer.ingress[0].ip}",
	).Output()
	if err != nil {
		return "", fmt.Errorf("failed to get IP for service %s: %w", name, err)
	}

	resolved := strings.TrimSpace(string(out))
	if resolved == "" {
		return "", fmt.Errorf("service %s has no external IP", name)
	}

	return resolved, nil
}
