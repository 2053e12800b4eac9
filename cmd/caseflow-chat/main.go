// Package main provides an interactive terminal client for the caseflow
// assistant backend.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caseflow/assistant/internal/chat"
	"github.com/caseflow/assistant/internal/config"
	"github.com/caseflow/assistant/internal/domain"
	"github.com/caseflow/assistant/internal/logging"
	"github.com/caseflow/assistant/internal/transport"
)

func main() {
	cfg := config.Load()

	var (
		url   = flag.String("url", cfg.AssistantURL, "assistant backend base URL")
		wsURL = flag.String("ws-url", cfg.AssistantWS, "assistant backend WebSocket URL")
		useWS = flag.Bool("ws", false, "use the WebSocket transport instead of HTTP")
		level = flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger, err := logging.New(*level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var tr transport.Transport
	if *useWS {
		tr = transport.NewWSClient(*wsURL)
	} else {
		tr = transport.NewClient(*url, cfg.RequestTimeout)
	}

	controller := chat.NewController(tr, logger)

	changes := make(chan struct{}, 1)
	controller.SetOnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("caseflow assistant: type a message, /new to start over, /quit to exit")

	p := newPrinter()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/new":
			controller.NewConversation()
			fmt.Println("(new conversation)")
			continue
		}

		if err := controller.Submit(context.Background(), line, nil); err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		waitForTurn(controller, p, changes, interrupt)
		fmt.Println()
	}
}

// waitForTurn renders incremental updates until the active turn reaches a
// terminal state. A first interrupt cancels the turn; a second exits.
func waitForTurn(controller *chat.Controller, p *printer, changes <-chan struct{}, interrupt <-chan os.Signal) {
	for {
		p.render(controller)
		if !controller.Active() {
			return
		}
		select {
		case <-changes:
		case <-interrupt:
			fmt.Println("\n(canceling...)")
			controller.CancelActive()
		}
	}
}

// printer tracks how much of the streaming assistant message has been echoed
// to the terminal so each change notification only prints the new part.
type printer struct {
	messageID string
	written   int
	announced map[string]bool
	settled   map[string]bool
}

func newPrinter() *printer {
	return &printer{
		announced: make(map[string]bool),
		settled:   make(map[string]bool),
	}
}

func (p *printer) render(controller *chat.Controller) {
	conv := controller.Conversation()
	if len(conv.Messages) == 0 {
		return
	}
	msg := conv.Messages[len(conv.Messages)-1]
	if msg.Role != domain.RoleAssistant {
		return
	}

	if msg.MessageID != p.messageID {
		p.messageID = msg.MessageID
		p.written = 0
		p.announced = make(map[string]bool)
		p.settled = make(map[string]bool)
	}

	for _, exec := range controller.ToolExecutions() {
		if !p.announced[exec.ID] {
			p.announced[exec.ID] = true
			fmt.Printf("[tool %s running]\n", exec.Name)
		}
		if !p.settled[exec.ID] && exec.EndedAt != nil {
			p.settled[exec.ID] = true
			fmt.Printf("[tool %s %s in %dms]\n", exec.Name, exec.Status, exec.DurationMs)
		}
	}

	if p.written < len(msg.Content) {
		fmt.Print(msg.Content[p.written:])
		p.written = len(msg.Content)
	}
}
