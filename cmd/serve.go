package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	colorize "github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/server"
	"github.com/arcanaland/cardpress/internal/template"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve card data and rendered card images over HTTP",
	Long: `Serve starts an HTTP server exposing the configured card data:

  GET /api/health
  GET /cards/random?type=&count=   up to count random records of a category (default 5)
  GET /cards/svg/:type/:id         the filled SVG of a card
  GET /cards/:type                 all records of a category
  GET /cards/:type/:id             one record
  GET /cards/:type/:id/image       the card rendered on demand as PNG
  GET /stock/...                   files of the output directory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if debug, _ := cmd.Flags().GetBool("debug"); !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		sources := map[card.Category]server.Source{}
		for _, cat := range card.Categories {
			cc, ok := cfg.Categories[string(cat)]
			if !ok {
				continue
			}
			d, err := deck.Load(cc.Data, cat)
			if errors.Is(err, deck.ErrDataNotFound) {
				fmt.Println(colorize.YellowString("warning: ") + fmt.Sprintf("skipping %s: %v", cat, err))
				continue
			}
			if err != nil {
				return fmt.Errorf("error loading %s data: %v", cat, err)
			}
			tmpl, err := template.LoadOrBuiltin(cc.Template, cat)
			if err != nil {
				return fmt.Errorf("error loading %s template: %v", cat, err)
			}
			sources[cat] = server.Source{Deck: d, Template: tmpl}
		}

		fonts := loadFonts(cfg)
		renderOpts, err := cfg.RenderOptions(fonts)
		if err != nil {
			return err
		}
		strategy, err := render.ParseStrategy(cfg.Strategy)
		if err != nil {
			return err
		}
		r, err := render.New(strategy, renderOpts)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(sources, r, template.DirAssets{Root: cfg.BackgroundDir}, cfg.OutputDir)
		srv.SVG = template.SVGOptions{Fonts: fonts, Fallback: renderOpts.Style.Fallback}
		fmt.Println(colorize.CyanString("Serving cards on ") + colorize.HiWhiteString("http://%s", addr))
		return srv.Run(ctx, addr, gin.Logger())
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "localhost:8080", "address to listen on")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")
}
