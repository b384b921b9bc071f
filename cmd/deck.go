package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Inspect the configured card data files",
	Long:  `Commands for inspecting the card data files of each category.`,
}

// deckListCmd represents the deck list command
var deckListCmd = &cobra.Command{
	Use:   "ls [category...]",
	Short: "List the cards of the configured data files",
	Long: `List prints the id and title of every card. Cards whose image has already been
generated are marked with *.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cats, err := categoriesFromArgs(cfg, args)
		if err != nil {
			return err
		}

		for _, cat := range cats {
			path := cfg.Category(cat).Data
			d, err := deck.Load(path, cat)
			if errors.Is(err, deck.ErrDataNotFound) {
				fmt.Printf("%s: data file %s does not exist.\n", cat, path)
				continue
			}
			if err != nil {
				fmt.Printf("%s: error loading deck: %v\n", cat, err)
				continue
			}

			fmt.Printf("%s (%s, %d cards)\n", cat, path, d.Len())
			for _, rec := range d.Records {
				marker := " "
				if _, err := os.Stat(card.ImagePath(cfg.OutputDir, cat, rec.ID())); err == nil {
					marker = "*"
				}
				fmt.Printf("%s %-8s %s\n", marker, rec.ID(), rec.Title())
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckListCmd)
}
