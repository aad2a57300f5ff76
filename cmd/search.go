package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/search"
)

var (
	resultTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	resultMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	resultBlockStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1).
				Margin(0, 0, 1, 0)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	noResultsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var markRe = regexp.MustCompile(regexp.QuoteMeta(search.HighlightStart) +
	`(.*?)` + regexp.QuoteMeta(search.HighlightEnd))

// SearchCommand creates the search command.
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search indexed cards",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "space",
				Usage: "Restrict results to a space",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Restrict results to card type(s). Can be used multiple times",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Skip the first N results",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return fmt.Errorf("usage: search <query>")
			}
			return searchCards(c.String("config"), query, search.Params{
				SpaceID:   c.String("space"),
				CardTypes: c.StringSlice("type"),
				Limit:     c.Int("limit"),
				Offset:    c.Int("offset"),
				Highlight: true,
			}, c.Bool("json"))
		},
	}
}

func searchCards(configPath, query string, params search.Params, asJSON bool) error {
	cfg, store, err := loadConfigAndStore(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	params.Query = query
	svc := search.NewServiceWith(store, newSegmenter(cfg))

	results, err := svc.Search(params)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	total, err := svc.Count(params)
	if err != nil {
		return fmt.Errorf("counting results: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Total   int                 `json:"total"`
			Results []core.SearchResult `json:"results"`
		}{Total: total, Results: results})
	}

	if len(results) == 0 {
		fmt.Println(noResultsStyle.Render("No results found"))
		return nil
	}

	for i, r := range results {
		fmt.Print(resultBlockStyle.Render(formatResult(r, params.Offset+i+1)))
		fmt.Println()
	}
	fmt.Printf("Total: %d results\n", total)
	return nil
}

// formatResult renders one hit. Highlight markers become terminal styling.
func formatResult(r core.SearchResult, index int) string {
	var b strings.Builder

	name := r.Name
	if name == "" {
		name = "(untitled)"
	}
	b.WriteString(fmt.Sprintf("#%d %s", index, resultTitleStyle.Render(renderMarks(name))))
	b.WriteString("\n")

	meta := fmt.Sprintf("%s | %s | %s", r.ID, r.CardType, r.UpdateTime.Format("2006-01-02 15:04"))
	b.WriteString(resultMetaStyle.Render(meta))

	for _, snippet := range highlightSnippets(r.Highlight) {
		b.WriteString("\n")
		b.WriteString(renderMarks(snippet))
	}
	return b.String()
}

// highlightSnippets collects the non-empty highlight fields in a stable
// display order. The card name is shown in the title, not here.
func highlightSnippets(h *core.Highlight) []string {
	if h == nil {
		return nil
	}
	var snippets []string
	for _, s := range []string{h.Text, h.Description, h.MindMapContent, h.FileContent, h.DrawboardContent, h.RichText} {
		if s != "" {
			snippets = append(snippets, s)
		}
	}
	return snippets
}

func renderMarks(s string) string {
	return markRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := markRe.FindStringSubmatch(m)[1]
		return matchStyle.Render(inner)
	})
}
