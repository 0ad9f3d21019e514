package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SurfaceManifest describes the visible command tree. Shell completion
// scripts and docs are generated from it.
type SurfaceManifest struct {
	CLI         string           `json:"cli"`
	Version     string           `json:"version,omitempty"`
	GlobalFlags []SurfaceFlag    `json:"global_flags"`
	Commands    []SurfaceCommand `json:"commands"`
}

// SurfaceCommand is one command and its visible children.
type SurfaceCommand struct {
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	Aliases     []string         `json:"aliases,omitempty"`
	Short       string           `json:"short"`
	Flags       []SurfaceFlag    `json:"flags,omitempty"`
	Subcommands []SurfaceCommand `json:"subcommands,omitempty"`
}

// SurfaceFlag is one flag as pflag reports it.
type SurfaceFlag struct {
	Long    string `json:"long"`
	Short   string `json:"short,omitempty"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
	Usage   string `json:"usage,omitempty"`
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

var commandsCmd = &cobra.Command{
	Use:    "commands",
	Short:  "Print the command tree as JSON",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := CommandSurfaceJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

// CommandSurfaceJSON returns the manifest for the weaver command tree.
func CommandSurfaceJSON() ([]byte, error) {
	m := SurfaceManifest{
		CLI:         rootCmd.Name(),
		Version:     rootCmd.Version,
		GlobalFlags: surfaceFlags(rootCmd.PersistentFlags()),
		Commands:    surfaceChildren(rootCmd),
	}
	return json.MarshalIndent(m, "", "  ")
}

func surfaceChildren(parent *cobra.Command) []SurfaceCommand {
	var out []SurfaceCommand
	for _, c := range parent.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		out = append(out, SurfaceCommand{
			Name:        c.Name(),
			Path:        c.CommandPath(),
			Aliases:     c.Aliases,
			Short:       c.Short,
			Flags:       surfaceFlags(c.LocalNonPersistentFlags()),
			Subcommands: surfaceChildren(c),
		})
	}
	slices.SortFunc(out, func(a, b SurfaceCommand) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func surfaceFlags(fs *pflag.FlagSet) []SurfaceFlag {
	var out []SurfaceFlag
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Hidden {
			return
		}
		out = append(out, SurfaceFlag{
			Long:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		})
	})
	slices.SortFunc(out, func(a, b SurfaceFlag) int { return cmp.Compare(a.Long, b.Long) })
	return out
}
