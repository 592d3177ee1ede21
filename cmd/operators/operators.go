package operators

import "github.com/spf13/cobra"

// OperatorsCmd is the parent command for operator bootstrap operations
var OperatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "Manage operator records",
	Long: `Commands for managing operator records directly from the server. Google signup
only ever creates level 2 operators, so the first level 1 admin is created here.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the operator (required)")
	createCmd.Flags().StringVar(&displayNameFlag, "display-name", "", "Display name of the operator (required)")
	createCmd.Flags().StringVar(&firstNameFlag, "first-name", "", "First name of the operator (required)")
	createCmd.Flags().StringVar(&lastNameFlag, "last-name", "", "Last name of the operator")
	createCmd.Flags().IntVar(&levelFlag, "level", 1, "Operator level: 1 for admin, 2 for manager")

	OperatorsCmd.AddCommand(createCmd)
}
