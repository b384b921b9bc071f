package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [category...]",
	Short: "Validate card data files and templates",
	Long: `Validate checks the data file and the template of each category without rendering.
It reports malformed data and templates as errors, and missing fields, non-numeric stats,
missing background artwork and template slots without a matching field as warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cats, err := categoriesFromArgs(cfg, args)
		if err != nil {
			return err
		}

		dataFlag, _ := cmd.Flags().GetString("data")
		templateFlag, _ := cmd.Flags().GetString("template")
		if (dataFlag != "" || templateFlag != "") && len(cats) != 1 {
			return fmt.Errorf("--data and --template need exactly one category")
		}

		failed := false
		for _, cat := range cats {
			cc := cfg.Category(cat)
			if dataFlag != "" {
				cc.Data = dataFlag
			}
			if templateFlag != "" {
				cc.Template = templateFlag
			}

			v := validator.NewValidator(cat, cc.Data, cc.Template, cfg.BackgroundDir)
			results, err := v.Validate()
			if err != nil {
				return fmt.Errorf("validation error: %v", err)
			}

			fmt.Printf("Validation Results (%s):\n", cat)
			fmt.Println("-------------------")

			if len(results.Errors) == 0 {
				fmt.Printf("✅ '%s' is valid.\n", cc.Data)
			} else {
				failed = true
				fmt.Printf("❌ '%s' has %d validation errors:\n", cc.Data, len(results.Errors))
				for i, err := range results.Errors {
					fmt.Printf("%d. %s\n", i+1, err)
				}
			}

			if len(results.Warnings) > 0 {
				fmt.Println("\nWarnings:")
				for i, warn := range results.Warnings {
					fmt.Printf("%d. %s\n", i+1, warn)
				}
			}
			fmt.Println()
		}

		if failed {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("data", "d", "", "card data file (overrides the configured file)")
	validateCmd.Flags().StringP("template", "t", "", "SVG template (overrides the configured or builtin template)")
}
