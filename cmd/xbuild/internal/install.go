package internal

import (
	"github.com/spf13/cobra"

	"github.com/goplus/xbuild/internal/tools"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a tool from a local archive",
}

var installZigCmd = &cobra.Command{
	Use:   "zig [archive]",
	Short: "Install zig from a release archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			s.log.Debug("Expected archive: %s", inst.ZigArchiveName())
			return inst.InstallZig(cmd.Context(), args[0])
		})
	},
}

var installSDKCmd = &cobra.Command{
	Use:   "sdk [archive]",
	Short: "Install the macOS SDK from an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			s.log.Debug("Expected archive: %s", inst.SDKArchiveName())
			return inst.InstallMacOSSDK(cmd.Context(), args[0])
		})
	},
}

var (
	setupZig string
	setupSDK string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install every tool with a given archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInstaller(cmd, func(s *session, inst *tools.Installer) error {
			s.log.Header("Tool Setup")
			return inst.Setup(cmd.Context(), tools.SetupArchives{Zig: setupZig, MacOSSDK: setupSDK})
		})
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupZig, "zig", "", "Zig release archive")
	setupCmd.Flags().StringVar(&setupSDK, "sdk", "", "macOS SDK archive")
	installCmd.AddCommand(installZigCmd, installSDKCmd)
	rootCmd.AddCommand(installCmd, setupCmd)
}

func withInstaller(cmd *cobra.Command, fn func(*session, *tools.Installer) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	inst, err := s.installer()
	if err != nil {
		return err
	}
	return fn(s, inst)
}
