package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"guildhall/internal/chatitem"
	"guildhall/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Address of the guildhall server")
	name := flag.String("name", "", "Profile name to identify as")
	serverID := flag.String("server", "", "Server id")
	channelID := flag.String("channel", "", "Channel id")
	socketURL := flag.String("socket-url", "/api/socket/messages", "Path of the message endpoint")
	interval := flag.Duration("interval", 2*time.Second, "Refresh interval")
	flag.Parse()

	if *name == "" || *serverID == "" || *channelID == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*baseURL, *name, *socketURL, *serverID, *channelID, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "guildhall-client: %v\n", err)
		os.Exit(1)
	}
}

func run(baseURL, name, socketURL, serverID, channelID string, interval time.Duration) error {
	client, err := tui.NewAPIClient(baseURL, 10*time.Second)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Identify(ctx, name); err != nil {
		return fmt.Errorf("could not identify as %s: %w", name, err)
	}

	route := chatitem.Route{BaseURL: socketURL, ServerID: serverID, ChannelID: channelID}
	model := tui.NewModel(client, route, interval)
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
