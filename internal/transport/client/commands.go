package client

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

func printField(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label+":"), value)
}

// Shorten creates or looks up a short URL and displays the result
func (c *Commands) Shorten(ctx context.Context, originalURL string) error {
	result, created, err := c.client.Shorten(ctx, originalURL)
	if err != nil {
		return err
	}

	if created {
		fmt.Println(titleStyle.Render("Short URL created"))
	} else {
		fmt.Println(titleStyle.Render("Short URL already exists"))
	}
	printField("Short Code", result.ShortCode)
	printField("Short URL", urlStyle.Render(result.ShortURL))
	printField("Original URL", result.OriginalURL)

	return nil
}

// Info retrieves and displays information about a short URL
func (c *Commands) Info(ctx context.Context, shortCode string) error {
	mapping, err := c.client.Info(ctx, shortCode)
	if err != nil {
		if IsNotFound(err) {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Println(titleStyle.Render("URL Information"))
	printField("Short Code", mapping.ShortCode)
	printField("Original URL", mapping.OriginalURL)
	printField("Created At", mapping.CreatedAt.Format(time.RFC3339))
	printField("Click Count", fmt.Sprintf("%d", mapping.ClickCount))

	return nil
}

// Resolve displays the redirect target of a short code
func (c *Commands) Resolve(ctx context.Context, shortCode string) error {
	target, err := c.client.Resolve(ctx, shortCode)
	if err != nil {
		if IsNotFound(err) {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Println(urlStyle.Render(target))
	return nil
}
