package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sitefix/internal/config"
	"github.com/ziadkadry99/sitefix/internal/fileops"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sitefix config file",
	Long:  `Writes a .sitefix.yml with the default relocation rule, promote links
and revert layout. With --wizard, asks for the mirror root, the page and its
section markers interactively.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("wizard", false, "configure interactively")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	wizard, _ := cmd.Flags().GetBool("wizard")
	force, _ := cmd.Flags().GetBool("force")

	if fileops.Exists(cfgFile) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	if wizard {
		_, err := config.RunWizard(cfgFile)
		return err
	}

	c := config.DefaultConfig()
	if rootDir != "" {
		c.Root = rootDir
	}
	if err := c.Save(cfgFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
	return nil
}
