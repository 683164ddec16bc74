package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that fdemon's external dependencies are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, err := filepath.Abs(".")
		if err != nil {
			return fmt.Errorf("fdemon doctor: %w", err)
		}

		ok := true
		ok = checkTool("flutter") && ok
		ok = checkTool("dart") && ok
		ok = checkProject(repoPath) && ok

		if !ok {
			return fmt.Errorf("fdemon doctor: one or more checks failed")
		}
		fmt.Println("all checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func checkTool(name string) bool {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Printf("[FAIL] %s not found on PATH\n", name)
		return false
	}
	fmt.Printf("[ OK ] %s: %s\n", name, path)
	return true
}

func checkProject(repoPath string) bool {
	if _, err := os.Stat(filepath.Join(repoPath, "pubspec.yaml")); err != nil {
		fmt.Printf("[FAIL] %s is not a Flutter project (no pubspec.yaml)\n", repoPath)
		return false
	}
	fmt.Printf("[ OK ] %s is a Flutter project\n", repoPath)
	return true
}
