package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	entitytypestore "github.com/dalemusser/stratametrics/internal/app/store/entitytypes"
	metricsstore "github.com/dalemusser/stratametrics/internal/app/store/metrics"
	metricvaluestore "github.com/dalemusser/stratametrics/internal/app/store/metricvalues"
	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/metricsummary"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetrender"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd() *cobra.Command {
	var (
		params  []string
		path    string
		at      string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render <widget-key>",
		Short: "Render a stored widget to stdout",
		Example: `  widgetctl render last-week
  widgetctl render last-week --param CampusId=7 --at 2024-03-20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageParams, err := parseParams(params)
			if err != nil {
				return err
			}
			now, err := parseAt(at)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, closeDB, err := connect(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			widget, err := widgetstore.New(db).GetByKey(ctx, args[0])
			if errors.Is(err, widgetstore.ErrNotFound) {
				return fmt.Errorf("no widget with key %q", args[0])
			}
			if err != nil {
				return err
			}

			selector := metricsummary.New(metricsstore.New(db), metricvaluestore.New(db))
			svc := widgetrender.New(selector, lava.New()).WithClock(func() time.Time { return now })

			types := entitytypestore.New(db)
			out, err := svc.Render(ctx, widgetconfig.FromWidget(widget), widgetrender.RenderContext{
				CurrentPath: path,
				PageParams:  pageParams,
				Lookup: func(entityType uuid.UUID) (int, bool) {
					et, err := types.GetByGUID(ctx, entityType)
					if err != nil {
						return 0, false
					}
					id, err := strconv.Atoi(pageParams[et.Name+"Id"])
					return id, err == nil
				},
			})
			if err != nil {
				return err
			}

			logger.Debug("widget rendered", zap.String("key", args[0]), zap.Time("now", now))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "page parameter as Name=Value (repeatable)")
	cmd.Flags().StringVar(&path, "path", "/", "value of the CurrentPath merge field")
	cmd.Flags().StringVar(&at, "at", "", "render as of this time (RFC 3339 or YYYY-MM-DD; default now)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	return cmd
}

// parseParams turns Name=Value pairs into page parameters.
func parseParams(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, p := range raw {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q, want Name=Value", p)
		}
		out[k] = v
	}
	return out, nil
}

func parseAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
