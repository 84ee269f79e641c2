package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/glabrego/teletext-cli/internal/api"
	"github.com/glabrego/teletext-cli/internal/app"
	"github.com/glabrego/teletext-cli/internal/overlay"
)

const commandTimeout = 30 * time.Second

func newFeedsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "feeds",
		Short: "List feeds with their fetch health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			status, err := sess.service.Feeds(ctx)
			if err != nil {
				return err
			}
			printFeeds(color.Output, status, sess.overlay.DisabledFeeds().All())
			return nil
		},
	}
}

// printFeeds writes one row per feed: enabled marker, health and URL.
func printFeeds(w io.Writer, status app.FeedStatus, disabled map[string]struct{}) {
	bold := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ON"), bold.Sprint("HEALTH"), bold.Sprint("ARTICLES"), bold.Sprint("FEED"))
	for _, url := range status.Feeds {
		on := "x"
		if _, off := disabled[url]; off {
			on = " "
		}
		health, known := status.Health[url]
		label := faint.Sprint("NO DATA")
		articles := "-"
		if known {
			articles = fmt.Sprint(health.ArticleCount)
			if health.ErrorCount > 0 {
				label = bad.Sprintf("ERR x%d", health.ErrorCount)
			} else {
				label = ok.Sprint("OK")
			}
		}
		tbl.AddRow("["+on+"]", label, articles, url)
	}
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w, faint.Sprintf("%d feeds, %d disabled", len(status.Feeds), countDisabled(status.Feeds, disabled)))
}

func countDisabled(feeds []string, disabled map[string]struct{}) int {
	n := 0
	for _, f := range feeds {
		if _, ok := disabled[f]; ok {
			n++
		}
	}
	return n
}

func newOPMLCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opml",
		Short: "Import or export the backend feed list as OPML",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Add every feed in an OPML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			added, err := sess.service.ImportOPML(ctx, string(content))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d feeds\n", added)
			return nil
		},
	}, &cobra.Command{
		Use:   "export [file]",
		Short: "Write the feed list as OPML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			doc, err := sess.service.ExportOPML(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			return os.WriteFile(args[0], []byte(doc), 0o644)
		},
	})
	return cmd
}

type overlayDump struct {
	Bookmarks     []string      `json:"bookmarks"`
	Read          []string      `json:"read"`
	DisabledFeeds []string      `json:"disabled_feeds"`
	Settings      *api.Settings `json:"settings,omitempty"`
}

func dumpOverlay(ov *overlay.Store) overlayDump {
	d := overlayDump{
		Bookmarks:     sortedKeys(ov.Bookmarks().All()),
		Read:          sortedKeys(ov.Read().All()),
		DisabledFeeds: sortedKeys(ov.DisabledFeeds().All()),
	}
	if s, ok := ov.LoadSettings(); ok {
		d.Settings = &s
	}
	return d
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newOverlayCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Inspect or reset local bookmarks, read state and settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the local overlay as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dumpOverlay(sess.overlay))
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Forget bookmarks and read state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.overlay.Bookmarks().Clear()
			sess.overlay.Read().Clear()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "bookmarks and read state cleared")
			return nil
		},
	})
	return cmd
}
