package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/spf13/cobra"

	"inlineai.app/relay/core/config"
	"inlineai.app/relay/internal/client"
	"inlineai.app/relay/internal/targeter"
	"inlineai.app/relay/internal/widget"
)

type pickOptions struct {
	url         string
	server      string
	description string
	headless    bool
	controlURL  string
}

func newPickCmd(cfg config.Config) *cobra.Command {
	opts := &pickOptions{}

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick an element and file a change request",
		Long: `Open the page, wait for one click, snapshot the clicked element and
submit a change request for it.

Examples:
  # Pick on a local page and type the description when prompted
  inline-ai pick --url http://localhost:3000/pricing

  # Give the description up front, against a preview deploy
  inline-ai pick --url "https://preview.acme.dev/?pr=42" -d "Make the heading larger and bold"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPick(cmd.Context(), opts, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Page to open")
	cmd.Flags().StringVar(&opts.server, "server", cfg.ServerURL, "Relay base URL")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "What should change (prompted when empty)")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Run Chrome without a window")
	cmd.Flags().StringVar(&opts.controlURL, "control-url", "", "DevTools URL of an already running Chrome")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runPick(parent context.Context, opts *pickOptions, stdin io.Reader) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " Opening " + opts.url + "..."
	s.Start()

	browser, page, err := openPage(ctx, opts)
	if err != nil {
		s.Stop()
		return err
	}
	defer browser.Close()
	s.Stop()

	picker := targeter.NewPicker(targeter.NewRodPage(page))
	session := widget.NewSession(picker, client.New(opts.server, nil))

	printHeader(opts.url)
	fmt.Println("🎯 Click the element you want changed...")

	target, err := session.Pick(ctx)
	if err != nil {
		if errors.Is(err, targeter.ErrPickCancelled) {
			return errors.New("pick cancelled")
		}
		return fmt.Errorf("picking element: %w", err)
	}

	printSuccess("Element selected")
	fmt.Printf("   Locator: %s\n", color.CyanString(target.Locator))
	if target.HasScreenshot() {
		fmt.Println("   Screenshot: captured")
	} else {
		fmt.Printf("   Screenshot: %s\n", color.YellowString("not available"))
	}
	fmt.Println()

	description := opts.description
	if description == "" {
		description, err = promptDescription(stdin)
		if err != nil {
			return err
		}
	}

	s.Suffix = " Filing change request..."
	s.Start()
	result, err := session.Submit(ctx, description)
	s.Stop()

	if err != nil {
		printError(err)
		return err
	}

	printSuccess("Issue created successfully!")
	fmt.Printf("\n   %s\n\n", color.GreenString(result.IssueURL))
	if result.RelatedPRNumber != nil {
		fmt.Printf("   Linked to PR #%d\n", *result.RelatedPRNumber)
	}
	fmt.Println("A coding agent will be notified.")
	return nil
}

func openPage(ctx context.Context, opts *pickOptions) (*rod.Browser, *rod.Page, error) {
	controlURL := opts.controlURL
	if controlURL == "" {
		u, err := launcher.New().Headless(opts.headless).Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: opts.url})
	if err != nil {
		_ = browser.Close()
		return nil, nil, fmt.Errorf("open %s: %w", opts.url, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = browser.Close()
		return nil, nil, fmt.Errorf("load %s: %w", opts.url, err)
	}

	return browser, page, nil
}

func promptDescription(stdin io.Reader) (string, error) {
	fmt.Print("📝 Describe what you want changed: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading description: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printHeader(url string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println("✨ Inline AI Editor")
	fmt.Printf("📍 Page: %s\n", url)
	fmt.Println()
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✅ %s\n", msg)
}

func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		red.Printf("❌ Error: %s\n", apiErr.Message)
		for _, d := range apiErr.Details {
			fmt.Printf("   %s %s\n", color.YellowString(d.Field), d.Message)
		}
		return
	}
	red.Printf("❌ Network error: %v\n", err)
}
