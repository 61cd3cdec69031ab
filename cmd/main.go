package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	privguard "github.com/privguard/privguard-go"
)

func main() {
	// Optional .env with NER_SERVER_PATH etc.
	godotenv.Load()

	opts := []privguard.Option{}
	if os.Getenv("NER_SERVER_PATH") != "" {
		opts = append(opts, privguard.WithNERServer("", nil))
	}

	guard, err := privguard.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing guard: %v\n", err)
		os.Exit(1)
	}
	defer guard.Close()

	ctx := context.Background()

	fmt.Println("--- English Example ---")
	runExample(ctx, guard, "Contact John Doe at john.doe@example.com or call +1-555-0199. He lives in New York.", "en")

	fmt.Println("\n--- French Example ---")
	runExample(ctx, guard, "M. Jean Dupont habite à Paris. Son email est jean.dupont@orange.fr.", "fr")

	fmt.Println("\n--- Stress Example (>10 entities) ---")
	runExample(ctx, guard, "Write to a@x.com, b@x.com, c@x.com, d@x.com, e@x.com, f@x.com, g@x.com, h@x.com, i@x.com, j@x.com, k@x.com, l@x.com today.", "en")
}

func runExample(ctx context.Context, guard *privguard.Guard, text, language string) {
	fmt.Println("Original: ", text)

	sanitized, table, err := guard.Anonymize(ctx, text, language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error anonymizing: %v\n", err)
		return
	}

	fmt.Println("Sanitized:", sanitized)
	fmt.Println("Mapping:  ", table)

	restored := privguard.Restore(sanitized, table)
	fmt.Println("Restored: ", restored)

	if restored != text {
		fmt.Fprintln(os.Stderr, "Round trip mismatch!")
	}
}
