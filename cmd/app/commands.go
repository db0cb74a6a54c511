package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/mediaoverlay"
	"github.com/starford/folio/internal/shelf"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func oneArg(cmd *cli.Command, what string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s", cmd.Name, what)
	}
	return cmd.Args().First(), nil
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile the catalog with the library once",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				return rt.Sync()
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List cataloged publications",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 50},
			&cli.IntFlag{Name: "offset"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				entries, total, err := rt.Shelf.List(ctx, int(cmd.Int("limit")), int(cmd.Int("offset")))
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Path, e.Title, strings.Join(e.Authors, ", "), strconv.Itoa(e.ReadingOrder)})
				}
				w := cmd.Root().Writer
				fmt.Fprintln(w, renderTable([]string{"Path", "Title", "Authors", "Items"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
				fmt.Fprintf(w, "%d of %d\n", len(entries), total)
				return nil
			})
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a summary of a publication package",
		ArgsUsage: "<package>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "package path")
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				pub, err := rt.Shelf.OpenFile(ctx, path)
				if err != nil {
					return err
				}
				defer pub.Teardown()

				info, err := rt.Shelf.Inspect(ctx, pub, path)
				if err != nil {
					return err
				}
				return writeJSON(cmd.Root().Writer, info)
			})
		},
	}
}

func manifestCommand() *cli.Command {
	return &cli.Command{
		Name:      "manifest",
		Usage:     "Print the normalized manifest of a publication package",
		ArgsUsage: "<package>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "package path")
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				pub, err := rt.Shelf.OpenFile(ctx, path)
				if err != nil {
					return err
				}
				defer pub.Teardown()

				data, err := manifest.Encode(pub)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.Root().Writer, string(data))
				return err
			})
		},
	}
}

func overlayCommand() *cli.Command {
	return &cli.Command{
		Name:      "overlay",
		Usage:     "Print the narration timeline of a publication package",
		ArgsUsage: "<package>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "package path")
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				pub, err := rt.Shelf.OpenFile(ctx, path)
				if err != nil {
					return err
				}
				defer pub.Teardown()

				narrations, err := rt.Shelf.Overlays(ctx, pub)
				if err != nil {
					return err
				}
				w := cmd.Root().Writer
				for _, n := range narrations {
					printNarration(w, n)
				}
				return nil
			})
		},
	}
}

func printNarration(w io.Writer, n shelf.Narration) {
	fmt.Fprintf(w, "%s (%s) %.3fs\n", n.Href, n.Overlay, n.Duration)
	var rows [][]string
	mediaoverlay.Walk(n.Root, func(node *mediaoverlay.Node) bool {
		if node.IsLeaf() {
			rows = append(rows, []string{
				formatSeconds(node.TotalElapsedTime),
				formatSeconds(node.Duration),
				node.Text,
				node.Audio,
			})
		}
		return true
	})
	fmt.Fprintln(w, renderTable([]string{"At", "Length", "Text", "Audio"}, rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft}))
}

func formatSeconds(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 3, 64)
}

func clockCommand() *cli.Command {
	return &cli.Command{
		Name:      "clock",
		Usage:     "Convert SMIL clock values to seconds",
		ArgsUsage: "<value>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Fail on values that do not parse cleanly"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			for _, v := range cmd.Args().Slice() {
				if cmd.Bool("strict") {
					secs, err := mediaoverlay.ParseClockStrict(v)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%g\n", v, secs)
					continue
				}
				fmt.Fprintf(w, "%s\t%g\n", v, mediaoverlay.ParseClock(v))
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.Join(cmd.Args().Slice(), " ")
			if query == "" {
				return fmt.Errorf("search: query is required")
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				hits, err := rt.Shelf.Search(ctx, query, int(cmd.Int("limit")))
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(hits))
				for _, h := range hits {
					rows = append(rows, []string{h.Path, h.Title, h.Snippet})
				}
				fmt.Fprintln(cmd.Root().Writer, renderTable([]string{"Path", "Title", "Match"}, rows, nil))
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Copy a package into the library and catalog it",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src, err := oneArg(cmd, "file")
			if err != nil {
				return err
			}
			f, err := os.Open(src)
			if err != nil {
				return err
			}
			defer f.Close()

			return withRuntime(cmd, func(rt *internal.Runtime) error {
				e, err := rt.Shelf.Import(ctx, filepath.Base(src), f)
				if err != nil {
					return err
				}
				return writeJSON(cmd.Root().Writer, e)
			})
		},
	}
}

func coverCommand() *cli.Command {
	return &cli.Command{
		Name:      "cover",
		Usage:     "Extract the cover image of a library publication",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the image to this file instead of stdout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "library path")
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				data, mediaType, err := rt.Shelf.Cover(ctx, path)
				if err != nil {
					return err
				}
				out := cmd.String("out")
				if out == "" {
					_, err = cmd.Root().Writer.Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				rt.Logger.Info("cover written", slog.String("path", out), slog.String("type", mediaType))
				return nil
			})
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Delete a package from the library and the catalog",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := oneArg(cmd, "library path")
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(rt *internal.Runtime) error {
				return rt.Shelf.Remove(ctx, path)
			})
		},
	}
}
