package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/lixenwraith/spotlight/settings"
)

func newSettingsCommand(rc *RootCommand) command {
	return command{
		name:        "settings",
		usage:       "get [key] | set <key> <value> | reset | path",
		description: "Read or change the persisted spotlight settings",
		run: func(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
			if len(args) == 0 {
				fs.Usage()
				return errors.New("settings: missing action")
			}

			store := settings.NewFileStore(ctx.Config.SettingsPath, ctx.Logger)
			editor := settings.NewEditor(store)
			bg := context.Background()

			switch action := args[0]; action {
			case "path":
				fmt.Fprintln(stdout, store.Path())
				return nil

			case "get":
				cur, err := editor.Load(bg)
				if err != nil {
					ctx.Logger.Warn("settings unreadable, showing defaults", "path", store.Path(), "error", err)
				}
				if len(args) > 1 {
					k, ok := settings.LookupKey(args[1])
					if !ok {
						return fmt.Errorf("%w: %q", settings.ErrUnknownKey, args[1])
					}
					fmt.Fprintln(stdout, cur.Value(k))
					return nil
				}
				for _, k := range settings.Keys() {
					fmt.Fprintf(stdout, "%s=%v\n", k, cur.Value(k))
				}
				return nil

			case "set":
				if len(args) != 3 {
					return errors.New("settings set: want <key> <value>")
				}
				if err := editor.SetString(bg, args[1], args[2]); err != nil {
					return err
				}
				ctx.Logger.Info("setting updated", "key", args[1], "value", args[2])
				return nil

			case "reset":
				if err := editor.Reset(bg); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "settings reset to defaults")
				if err := rc.notify("Spotlight", "Settings reset to defaults"); err != nil {
					ctx.Logger.Debug("desktop notification failed", "error", err)
				}
				return nil

			default:
				return fmt.Errorf("settings: unknown action %q", action)
			}
		},
	}
}
