package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/jun/gophbox/internal/app"
	"github.com/jun/gophbox/internal/config"
	"github.com/jun/gophbox/internal/logging"
	"github.com/jun/gophbox/internal/model"
	"github.com/jun/gophbox/internal/registry"
)

const timeLayout = "2006-01-02 15:04"

func newCLI() *cli.App {
	return &cli.App{
		Name:  "boxctl",
		Usage: "Inspect and maintain the gophbox file registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Store backend (memory, disk, dynamodb, sqlite, s3); overrides STORE_BACKEND",
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Directory of the disk backend; overrides DATA_DIR",
			},
			&cli.StringFlag{
				Name:  "sqlite-path",
				Usage: "Database file of the sqlite backend; overrides SQLITE_PATH",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "folders",
				Usage:  "List folders",
				Action: withRegistry(listFolders),
			},
			{
				Name:  "files",
				Usage: "List files, optionally of one folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "folder",
						Usage: "Folder key or name",
					},
				},
				Action: withRegistry(listFiles),
			},
			{
				Name:      "show",
				Usage:     "Print one file record as JSON",
				ArgsUsage: "<id>",
				Action:    withRegistry(showFile),
			},
			{
				Name:      "search",
				Usage:     "Search files by name, type or folder",
				ArgsUsage: "<keyword>",
				Action:    withRegistry(searchFiles),
			},
			{
				Name:      "mkdir",
				Usage:     "Create a folder",
				ArgsUsage: "<name>",
				Action:    withRegistry(makeFolder),
			},
			{
				Name:      "mv",
				Usage:     "Move a file into a folder",
				ArgsUsage: "<id> <folder>",
				Action:    withRegistry(moveFile),
			},
			{
				Name:      "rename",
				Usage:     "Rename a folder",
				ArgsUsage: "<folder> <new name>",
				Action:    withRegistry(renameFolder),
			},
			{
				Name:      "rmdir",
				Usage:     "Delete a folder, moving its files to the default folder",
				ArgsUsage: "<folder>",
				Action:    withRegistry(removeFolder),
			},
			{
				Name:      "rm",
				Usage:     "Remove a file record",
				ArgsUsage: "<id>",
				Action:    withRegistry(removeFile),
			},
			{
				Name:   "check",
				Usage:  "Verify registry consistency",
				Action: withRegistry(checkRegistry),
			},
		},
	}
}

// withRegistry loads configuration, applies the global flags, opens the
// registry and hands it to fn.
func withRegistry(fn func(c *cli.Context, reg *registry.Registry) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if v := c.String("backend"); v != "" {
			cfg.StoreBackend = v
		}
		if v := c.String("data-dir"); v != "" {
			cfg.DataDir = v
		}
		if v := c.String("sqlite-path"); v != "" {
			cfg.SQLitePath = v
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.New(c.App.ErrWriter, "text", "warn")
		reg, closeFn, err := app.OpenRegistry(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(c, reg)
	}
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, cli.Exit(fmt.Sprintf("usage: boxctl %s %s", c.Command.Name, c.Command.ArgsUsage), 2)
	}
	return c.Args().Slice(), nil
}

// report prints msg for an applied mutation. A failed write-through is
// reported and turned into a non-zero exit.
func report(c *cli.Context, msg string, err error) error {
	if err != nil && !errors.Is(err, registry.ErrStoreFailure) {
		return err
	}
	fmt.Fprintln(c.App.Writer, msg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("warning: %v", err), 1)
	}
	return nil
}

func printFiles(c *cli.Context, recs []*model.FileRecord) {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tFOLDER\tCREATED")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", rec.ID, rec.DisplayName, rec.Kind, rec.FolderID, rec.CreatedAt.Format(timeLayout))
	}
	w.Flush()
}

func listFolders(c *cli.Context, reg *registry.Registry) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tFILES\tCREATED")
	for _, f := range reg.ListFolders() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Key, f.DisplayName, len(f.Members), f.CreatedAt.Format(timeLayout))
	}
	return w.Flush()
}

func listFiles(c *cli.Context, reg *registry.Registry) error {
	if folder := c.String("folder"); folder != "" {
		recs, err := reg.ListFolder(folder)
		if err != nil {
			return err
		}
		printFiles(c, recs)
		return nil
	}
	views := reg.ListAllFiles()
	recs := make([]*model.FileRecord, len(views))
	for i := range views {
		recs[i] = &views[i].FileRecord
	}
	printFiles(c, recs)
	return nil
}

func showFile(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	rec, err := reg.GetFile(a[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}

func searchFiles(c *cli.Context, reg *registry.Registry) error {
	printFiles(c, reg.Search(c.Args().First()))
	return nil
}

func makeFolder(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	f, err := reg.CreateFolder(c.Context, a[0], "boxctl")
	if f == nil {
		return err
	}
	return report(c, fmt.Sprintf("created folder %s (%s)", f.Key, f.DisplayName), err)
}

func moveFile(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	rec, err := reg.MoveFile(c.Context, a[0], a[1])
	if rec == nil {
		return err
	}
	return report(c, fmt.Sprintf("moved %s to %s", rec.ID, rec.FolderID), err)
}

func renameFolder(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	f, err := reg.RenameFolder(c.Context, a[0], a[1])
	if f == nil {
		return err
	}
	return report(c, fmt.Sprintf("renamed folder to %s (%s)", f.Key, f.DisplayName), err)
}

func removeFolder(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	moved, err := reg.DeleteFolder(c.Context, a[0])
	return report(c, fmt.Sprintf("deleted folder %s, %d file(s) moved to %s", model.FolderKey(a[0]), moved, model.DefaultFolderKey), err)
}

func removeFile(c *cli.Context, reg *registry.Registry) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	return report(c, fmt.Sprintf("removed %s", a[0]), reg.DeleteFile(c.Context, a[0]))
}

func checkRegistry(c *cli.Context, reg *registry.Registry) error {
	if err := reg.CheckInvariants(); err != nil {
		return cli.Exit(fmt.Sprintf("inconsistent: %v", err), 1)
	}
	s := reg.Stats()
	fmt.Fprintf(c.App.Writer, "ok: %d file(s) in %d folder(s)\n", s.Files, s.Folders)
	return nil
}
