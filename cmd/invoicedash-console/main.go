// Package main implements an interactive operator console for the invoice
// backend, built on the same endpoint resolution and request pipeline as the
// dashboard page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"invoicedash/internal/backend"
	"invoicedash/internal/dashboard"
	"invoicedash/internal/display"
	"invoicedash/internal/endpoint"
	"invoicedash/internal/runtimecfg"
)

func main() {
	var (
		backendURL = flag.String("backend", "", "Backend base URL (overrides environment injection)")
		scheme     = flag.String("scheme", "http", "Own scheme used for fallback resolution")
		hostname   = flag.String("hostname", "localhost", "Own hostname used for fallback resolution")
	)
	flag.Parse()

	rt := runtimecfg.FromEnv()
	if *backendURL != "" {
		rt = runtimecfg.Runtime{BackendURL: strings.TrimSpace(*backendURL)}
	}
	resolver := endpoint.NewResolver(rt, endpoint.Location{Scheme: *scheme, Hostname: *hostname})

	client := backend.New(resolver.BaseURL())
	reg := newRegistry(client, resolver)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("invoicedash"),
		HistoryFile:     ".invoicedash_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sInvoice Backend Console%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sEndpoint: %s%s\n", display.Cyan, endpoint.Normalize(resolver.BaseURL()), display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		reg.execute(line)
	}
}

// consoleSink renders one invocation to the terminal.
type consoleSink struct {
	verbose bool
}

func (s consoleSink) Loading(msg string) {
	fmt.Printf("%s%s%s\n", display.Cyan, msg, display.Reset)
}

func (s consoleSink) Success(res *backend.Result) {
	if s.verbose {
		fmt.Printf("%s[%d %s]%s\n", display.Green, res.StatusCode, res.ContentType, display.Reset)
	}
	if res.Structured {
		fmt.Printf("%s%s%s\n", display.Green, display.JSON(res.JSON), display.Reset)
		return
	}
	fmt.Println(res.Text)
}

func (s consoleSink) Failure(err error) {
	fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
}

// registry maps console commands to dashboard actions.
type registry struct {
	client   *backend.Client
	resolver *endpoint.Resolver

	health    *dashboard.Action
	openItems *dashboard.Action
	console   *dashboard.Action

	verbose bool
}

func newRegistry(client *backend.Client, resolver *endpoint.Resolver) *registry {
	return &registry{
		client:    client,
		resolver:  resolver,
		health:    dashboard.NewHealthAction(client, nil),
		openItems: dashboard.NewOpenItemsAction(client, nil),
		console:   dashboard.NewConsoleAction(client, nil),
	}
}

func (r *registry) execute(line string) {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "health", "h":
		r.run(r.health, "")
	case "open", "o":
		if len(args) != 1 {
			fmt.Printf("%susage: open <organization-id>%s\n", display.Red, display.Reset)
			return
		}
		r.run(r.openItems, args[0])
	case "get", "g":
		if len(args) != 1 {
			fmt.Printf("%susage: get <path>%s\n", display.Red, display.Reset)
			return
		}
		r.run(r.console, args[0])
	case "verbose", "v":
		r.verbose = !r.verbose
		fmt.Printf("verbose: %v\n", r.verbose)
	case "endpoint", "e":
		base := r.resolver.BaseURL()
		fmt.Printf("Base URL: %s\n", base)
		fmt.Printf("Origin:   %s\n", endpoint.Normalize(base))
	case "help", "?":
		r.printHelp()
	default:
		fmt.Printf("%sunknown command: %s (try 'help')%s\n", display.Red, cmd, display.Reset)
	}
}

func (r *registry) run(a *dashboard.Action, input string) {
	if !a.Run(context.Background(), input, consoleSink{verbose: r.verbose}) {
		fmt.Printf("%s%s already in flight%s\n", display.Yellow, a.Name, display.Reset)
	}
}

func (r *registry) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  health, h             Check backend health")
	fmt.Println("  open, o <org-id>      List open invoices for an organization")
	fmt.Println("  get, g <path>         GET an arbitrary backend path")
	fmt.Println("  endpoint, e           Show the resolved backend endpoint")
	fmt.Println("  verbose, v            Toggle verbose response output")
	fmt.Println("  help, ?               Show this help")
	fmt.Println("  exit, quit, x         Leave the console")
}
