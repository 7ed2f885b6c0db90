package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSaveCmd() *cobra.Command {
	var (
		w            models.Widget
		templateFile string
	)

	cmd := &cobra.Command{
		Use:   "save <widget-key>",
		Short: "Create or replace a widget's settings",
		Example: `  widgetctl save last-week --title "Last Week" \
    --metrics "0b1e...|4c2a...,77d0...|4c2a..." --entity "5b0e...|" --template-file week.lava`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w.Key = args[0]
			if templateFile != "" {
				b, err := os.ReadFile(templateFile)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				w.LiquidTemplate = string(b)
			}
			if w.LiquidTemplate == "" {
				w.LiquidTemplate = lava.DefaultTemplate
			}
			if w.Entity != "" && widgetconfig.ParseEntitySetting(w.Entity) == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: entity %q is malformed and will be ignored when rendering\n", w.Entity)
			}
			if len(widgetconfig.ParseMetricCategories(w.MetricCategories)) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no valid metrics; the widget will show the metric selection warning")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, closeDB, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := widgetstore.New(db).Save(ctx, w); err != nil {
				return err
			}
			logger.Info("widget saved", zap.String("key", w.Key))
			fmt.Fprintf(cmd.OutOrStdout(), "saved widget %q\n", w.Key)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&w.Title, "title", "", "widget title")
	f.StringVar(&w.Subtitle, "subtitle", "", "widget subtitle")
	f.StringVar(&w.MetricCategories, "metrics", "", "metrics as metricGuid|categoryGuid,...")
	f.StringVar(&w.Entity, "entity", "", "entity filter as entityTypeGuid|entityId")
	f.BoolVar(&w.RoundValues, "round-values", false, "round values to whole numbers")
	f.StringVar(&w.LiquidTemplate, "template", "", "Lava template source")
	f.StringVar(&templateFile, "template-file", "", "read the Lava template from a file")
	f.BoolVar(&w.EnableDebug, "debug", false, "append the Lava merge fields to the output")
	return cmd
}
