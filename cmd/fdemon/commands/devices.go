package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flutter-demon/fdemon/internal/supervisor"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached Flutter devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		discoverer := supervisor.NewDeviceDiscoverer()
		devices, err := discoverer.Discover(cmd.Context())
		if err != nil {
			return fmt.Errorf("fdemon devices: %w", err)
		}

		out, err := json.MarshalIndent(devices, "", "  ")
		if err != nil {
			return fmt.Errorf("fdemon devices: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
