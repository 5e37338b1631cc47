package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for entrawatch.

To load completions:

Bash:
  $ source <(entrawatch completion bash)
  # Or persist across sessions:
  $ entrawatch completion bash > /etc/bash_completion.d/entrawatch

Zsh:
  $ source <(entrawatch completion zsh)
  # Or persist:
  $ entrawatch completion zsh > "${fpath[1]}/_entrawatch"

Fish:
  $ entrawatch completion fish | source
  # Or persist:
  $ entrawatch completion fish > ~/.config/fish/completions/entrawatch.fish

PowerShell:
  PS> entrawatch completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
