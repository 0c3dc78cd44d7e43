// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package metrics

import (
	"context"
	"time"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/spf13/viper"
)

// A StatsSource provides the audience figures that do not come from the database
type StatsSource interface {
	Website(ctx context.Context) (dashboard.WebsiteSection, error)
	Social(ctx context.Context) (dashboard.SocialSection, error)
}

// StaticStats is a StatsSource returning fixed figures
type StaticStats struct {
	QuarterlyVisitors  int
	ChangePercent      float64
	InstagramFollowers int
	EngagementRate     float64
	LastPost           time.Time
}

// StaticStatsFromConfig reads the figures from the Stats.* configuration keys
func StaticStatsFromConfig() StaticStats {
	return StaticStats{
		QuarterlyVisitors:  viper.GetInt("Stats.QuarterlyVisitors"),
		ChangePercent:      viper.GetFloat64("Stats.VisitorChangePercent"),
		InstagramFollowers: viper.GetInt("Stats.InstagramFollowers"),
		EngagementRate:     viper.GetFloat64("Stats.EngagementRate"),
		LastPost:           viper.GetTime("Stats.LastPost"),
	}
}

// Website returns the website figures
func (s StaticStats) Website(ctx context.Context) (dashboard.WebsiteSection, error) {
	return dashboard.WebsiteSection{
		QuarterlyVisitors: s.QuarterlyVisitors,
		ChangePercent:     s.ChangePercent,
	}, nil
}

// Social returns the social media figures
func (s StaticStats) Social(ctx context.Context) (dashboard.SocialSection, error) {
	res := dashboard.SocialSection{
		InstagramFollowers: s.InstagramFollowers,
		EngagementRate:     s.EngagementRate,
	}
	if !s.LastPost.IsZero() {
		res.LastPost = s.LastPost.Format(isoDateTimeLayout)
	}
	return res, nil
}
