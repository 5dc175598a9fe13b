package app

import (
	"context"
	"time"

	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newBlocksCommand() *cobra.Command {
	root := &cobra.Command{Use: "blocks", Short: "Block-timestamp resolution"}

	var timestamp int64
	atCmd := &cobra.Command{
		Use:   "at",
		Short: "Resolve the first block at or after a unix timestamp",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := timestamp
			if ts <= 0 {
				return clierr.New(clierr.CodeUsage, "--timestamp must be a positive unix timestamp")
			}
			req := map[string]any{"network": s.selected.Slug(), "timestamp": ts}
			key := cacheKey(trimRootPath(cmd.CommandPath()), req)
			return s.runCachedCommand(trimRootPath(cmd.CommandPath()), key, time.Hour, func(ctx context.Context) (any, []model.ProviderStatus, []string, bool, error) {
				resolver, err := s.blockResolver(s.selected)
				if err != nil {
					return nil, nil, nil, false, err
				}
				began := time.Now()
				block, ok := resolver.BlockAt(ctx, ts)
				statuses := []model.ProviderStatus{{Name: blocksStatusName(s.selected), Status: "ok", LatencyMS: time.Since(began).Milliseconds()}}
				if !ok {
					return nil, statuses, nil, false, clierr.New(clierr.CodeUnavailable, "no block found near the requested timestamp")
				}
				info := model.BlockInfo{
					Network:     s.selected.Slug(),
					Timestamp:   ts,
					BlockNumber: block.Number,
					BlockTime:   block.Timestamp,
				}
				return info, statuses, nil, false, nil
			})
		},
	}
	atCmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Unix timestamp to resolve")
	_ = atCmd.MarkFlagRequired("timestamp")
	root.AddCommand(atCmd)

	return root
}
