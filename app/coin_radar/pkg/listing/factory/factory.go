package factory

import (
	"fmt"

	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/config"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing/binance"
	"github.com/iWorld-y/coin_radar/app/coin_radar/pkg/listing/page"
)

// NewSource 根据配置创建上线来源
func NewSource(cfg *config.Config) (listing.Source, error) {
	switch cfg.Listing.Provider {
	case "browser":
		return binance.NewSource(cfg.Listing.Browser), nil

	case "page":
		if cfg.Listing.Page.URL == "" {
			return nil, fmt.Errorf("listing page url is missing")
		}
		return page.NewSource(cfg.Listing.Page), nil

	case "static":
		if len(cfg.Listing.Coins) == 0 {
			return nil, fmt.Errorf("listing coins are missing")
		}
		return listing.Static(cfg.Listing.Coins), nil

	default:
		return nil, fmt.Errorf("unknown listing provider: %s", cfg.Listing.Provider)
	}
}
