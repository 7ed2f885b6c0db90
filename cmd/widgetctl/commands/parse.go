package commands

import (
	"fmt"
	"io"

	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
	"github.com/spf13/cobra"
)

func newParseEntityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-entity <entityTypeGuid|entityId>",
		Short: "Show how an entity setting is interpreted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			describeEntity(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func newParseMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-metrics <metricGuid|categoryGuid,...>",
		Short: "List the metric GUIDs a metric setting selects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := widgetconfig.ParseMetricCategories(args[0])
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no metrics")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func describeEntity(w io.Writer, raw string) {
	es := widgetconfig.ParseEntitySetting(raw)
	switch {
	case es == nil:
		fmt.Fprintln(w, "no filter (malformed setting)")
	case es.EntityID == nil:
		fmt.Fprintf(w, "entity type %s, id from page context (<EntityTypeName>Id)\n", es.EntityType)
	default:
		fmt.Fprintf(w, "entity type %s, id %d\n", es.EntityType, *es.EntityID)
	}
}
