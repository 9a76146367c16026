// Copyright 2025 anirec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the recommender.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DataConfig locates the source tables.
type DataConfig struct {
	ItemPath   string `mapstructure:"item_path"`
	RatingPath string `mapstructure:"rating_path"`
	// SampleSize bounds the number of rating rows loaded, zero loads all.
	SampleSize int `mapstructure:"sample_size"`
}

// RecommendConfig holds the knobs of the recommendation engines.
type RecommendConfig struct {
	// MaxUsers bounds the rating matrix to the most active users.
	MaxUsers int `mapstructure:"max_users"`
	// MaxAnime bounds the rating matrix to the most rated items.
	MaxAnime int `mapstructure:"max_anime"`
	// NumNeighbors is the neighborhood size of collaborative filtering.
	NumNeighbors int `mapstructure:"num_neighbors"`
	// VocabSize bounds the TF-IDF vocabulary of content filtering.
	VocabSize int `mapstructure:"vocab_size"`
	// LikedThreshold is the minimal score counted as a liked item.
	LikedThreshold float64 `mapstructure:"liked_threshold"`
	// CollaborativeWeight and ContentWeight are the default fusion weights.
	CollaborativeWeight float64 `mapstructure:"collaborative_weight"`
	ContentWeight       float64 `mapstructure:"content_weight"`
	// EngineMinRatings is the popularity threshold of the engine fallback.
	EngineMinRatings int `mapstructure:"engine_min_ratings"`
	// FallbackMinRatings is the popularity threshold of the facade fallback.
	FallbackMinRatings int `mapstructure:"fallback_min_ratings"`
}

// ServerConfig holds the REST API settings.
type ServerConfig struct {
	HttpHost string `mapstructure:"http_host"`
	HttpPort int    `mapstructure:"http_port"`
	DefaultN int    `mapstructure:"default_n"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			ItemPath:   "data/anime.csv",
			RatingPath: "data/rating.csv",
			SampleSize: 100000,
		},
		Recommend: RecommendConfig{
			MaxUsers:            10000,
			MaxAnime:            5000,
			NumNeighbors:        10,
			VocabSize:           1000,
			LikedThreshold:      7,
			CollaborativeWeight: 0.6,
			ContentWeight:       0.4,
			EngineMinRatings:    50,
			FallbackMinRatings:  100,
		},
		Server: ServerConfig{
			HttpHost: "127.0.0.1",
			HttpPort: 8087,
			DefaultN: 10,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("data.item_path", defaults.Data.ItemPath)
	v.SetDefault("data.rating_path", defaults.Data.RatingPath)
	v.SetDefault("data.sample_size", defaults.Data.SampleSize)
	v.SetDefault("recommend.max_users", defaults.Recommend.MaxUsers)
	v.SetDefault("recommend.max_anime", defaults.Recommend.MaxAnime)
	v.SetDefault("recommend.num_neighbors", defaults.Recommend.NumNeighbors)
	v.SetDefault("recommend.vocab_size", defaults.Recommend.VocabSize)
	v.SetDefault("recommend.liked_threshold", defaults.Recommend.LikedThreshold)
	v.SetDefault("recommend.collaborative_weight", defaults.Recommend.CollaborativeWeight)
	v.SetDefault("recommend.content_weight", defaults.Recommend.ContentWeight)
	v.SetDefault("recommend.engine_min_ratings", defaults.Recommend.EngineMinRatings)
	v.SetDefault("recommend.fallback_min_ratings", defaults.Recommend.FallbackMinRatings)
	v.SetDefault("server.http_host", defaults.Server.HttpHost)
	v.SetDefault("server.http_port", defaults.Server.HttpPort)
	v.SetDefault("server.default_n", defaults.Server.DefaultN)
}

// LoadConfig loads a TOML configuration file. Missing keys fall back to
// their defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}
