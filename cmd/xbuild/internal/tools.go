package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/xbuild/internal/archive"
	"github.com/goplus/xbuild/internal/rustup"
	"github.com/goplus/xbuild/internal/tools"
)

var extractCmd = &cobra.Command{
	Use:   "extract [archive] [dest]",
	Short: "Extract an archive after checking every entry stays inside dest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		if err := archive.Extract(args[0], args[1]); err != nil {
			return err
		}
		s.log.Success("Extracted %s to %s", filepath.Base(args[0]), args[1])
		return nil
	},
}

var addTargetsCmd = &cobra.Command{
	Use:   "add-targets [spec...]",
	Short: "Install Rust targets for the given specs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			targets, err := s.resolveSpecs(args)
			if err != nil {
				return err
			}
			rustupPath, ok := inst.RustupPath()
			if !ok {
				return rustup.ErrNotFound
			}
			client := rustup.New(
				rustup.WithRustupPath(rustupPath),
				rustup.WithEnv(inst.Env(os.Environ())),
				rustup.WithLogger(s.log),
			)
			return client.EnsureTargets(cmd.Context(), client.NewCache(), targets)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			s.log.Header("Tool Status")
			for _, st := range inst.Status() {
				switch st.State {
				case tools.Installed:
					s.log.Success("%s", formatStatus(st))
				case tools.NotNeeded:
					s.log.Info("%s", formatStatus(st))
				default:
					s.log.Warn("%s", formatStatus(st))
				}
			}
			return nil
		})
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the build environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			for _, kv := range inst.Env(nil) {
				fmt.Fprintln(cmd.OutOrStdout(), kv)
			}
			return nil
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:       "clean [tool]",
	Short:     "Remove an installed tool (rust, zig or sdk)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{tools.ToolRust, tools.ToolZig, tools.ToolMacOSSDK},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			if err := inst.Clean(args[0]); err != nil {
				return err
			}
			s.log.Success("Removed %s", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, addTargetsCmd, statusCmd, envCmd, cleanCmd)
}

func formatStatus(st tools.Status) string {
	line := st.Tool + ": "
	switch {
	case st.State == tools.Installed && st.Path != "":
		line += st.Path
	default:
		return line + st.State.String()
	}
	if st.Version != "" {
		line += " (" + st.Version + ")"
	}
	return line
}
