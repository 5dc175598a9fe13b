package app

import (
	"github.com/ggonzalez94/dexstats/internal/cache"
	clierr "github.com/ggonzalez94/dexstats/internal/errors"
	"github.com/ggonzalez94/dexstats/internal/model"
	"github.com/ggonzalez94/dexstats/internal/network"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newNetworksCommand() *cobra.Command {
	root := &cobra.Command{Use: "networks", Short: "Supported networks"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List supported networks and the selected one",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]model.NetworkInfo, 0, len(network.All()))
			for _, n := range network.All() {
				infos = append(infos, model.NetworkInfo{
					Slug:           n.Slug(),
					DisplayName:    n.DisplayName(),
					ChainID:        int64(n.ChainID()),
					NativeCurrency: n.NativeSymbol(),
					Selected:       n == s.selected,
				})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), infos, nil, cacheMetaBypass(), nil, false)
		},
	}

	// Every cached series is scoped to the network it was fetched from, so a
	// network switch leaves no per-key cleanup: reset drops everything.
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Invalidate all cached analytics after a network switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := s.cache
			if store == nil {
				opened, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
				if err != nil {
					return clierr.Wrap(clierr.CodeInternal, "open cache", err)
				}
				store = opened
				s.cache = opened
			}
			if err := store.InvalidateAll(); err != nil {
				return clierr.Wrap(clierr.CodeInternal, "invalidate cache", err)
			}
			result := map[string]any{
				"invalidated": true,
				"network":     s.selected.Slug(),
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil, cacheMetaBypass(), nil, false)
		},
	}

	root.AddCommand(list)
	root.AddCommand(reset)
	return root
}
