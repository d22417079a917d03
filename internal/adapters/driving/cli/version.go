package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionInfo is the --json shape of the version command.
type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versionInfo{
			Version: version,
			Go:      runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
		}
		if jsonFlag {
			return printJSON(cmd, info)
		}
		cmd.Printf("paperqa version %s (%s %s/%s)\n", info.Version, info.Go, info.OS, info.Arch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
