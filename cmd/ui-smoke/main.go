package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ui-smoke drives the web front in headless Chrome: it loads the match list,
// opens the first match and waits for the analysis to replace the placeholder.
func main() {
	var (
		pageURL string
		timeout time.Duration
	)
	flag.StringVar(&pageURL, "url", "http://localhost:8080/", "Web front URL")
	flag.DurationVar(&timeout, "timeout", 90*time.Second, "Overall timeout")
	flag.Parse()

	fmt.Printf("=== UI smoke check ===\n")
	fmt.Printf("URL: %s\n\n", pageURL)

	if err := run(pageURL, timeout); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func run(pageURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx)
	defer cancel()

	var cards int
	var placeholder string
	fmt.Println("1. Loading match list...")
	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("#matches-section", chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll("#matches-list .match-card").length`, &cards),
		chromedp.Evaluate(`(document.querySelector("#matches-list .loading") || {}).textContent || ""`, &placeholder),
	)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}
	fmt.Printf("   cards: %d\n", cards)
	if cards == 0 {
		return fmt.Errorf("no match cards rendered (placeholder: %q)", strings.TrimSpace(placeholder))
	}

	fmt.Println("2. Selecting first match...")
	var home, away string
	err = chromedp.Run(ctx,
		chromedp.Click("#matches-list .match-card button", chromedp.ByQuery),
		chromedp.WaitVisible("#prediction-section", chromedp.ByQuery),
		chromedp.Text("#p-home-name", &home, chromedp.ByQuery),
		chromedp.Text("#p-away-name", &away, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("select match: %w", err)
	}
	fmt.Printf("   %s vs %s\n", home, away)

	fmt.Println("3. Waiting for prediction...")
	var labels [3]string
	var analysis string
	err = chromedp.Run(ctx,
		chromedp.WaitNotPresent(`#analysis-text.pending`, chromedp.ByQuery),
		chromedp.Text("#label-home", &labels[0], chromedp.ByQuery),
		chromedp.Text("#label-draw", &labels[1], chromedp.ByQuery),
		chromedp.Text("#label-away", &labels[2], chromedp.ByQuery),
		chromedp.Text("#analysis-text", &analysis, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("wait for prediction: %w", err)
	}
	fmt.Printf("   home %s | draw %s | away %s\n", labels[0], labels[1], labels[2])
	fmt.Printf("   analysis: %s\n", truncate(strings.TrimSpace(analysis), 200))

	fmt.Println("4. Going back...")
	err = chromedp.Run(ctx,
		chromedp.Click("#back-btn", chromedp.ByQuery),
		chromedp.WaitVisible("#matches-section", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("go back: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
