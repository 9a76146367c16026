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
package main

import (
	_ "net/http/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anirec-io/anirec/base/log"
	"github.com/anirec-io/anirec/config"
	"github.com/anirec-io/anirec/logics"
	"github.com/anirec-io/anirec/server"
	"github.com/anirec-io/anirec/storage/data"
)

var anirecCommand = &cobra.Command{
	Use:   "anirec",
	Short: "An anime recommender system.",
	Run: func(cmd *cobra.Command, args []string) {
		// setup logger
		debugMode, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debugMode)

		// load config
		var cfg *config.Config
		if configPath, _ := cmd.PersistentFlags().GetString("config"); configPath != "" {
			log.Logger().Info("load config", zap.String("config", configPath))
			var err error
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				log.Logger().Fatal("failed to load config", zap.Error(err))
			}
		} else {
			cfg = config.GetDefaultConfig()
		}
		if httpHost, _ := cmd.PersistentFlags().GetString("http-host"); httpHost != "" {
			cfg.Server.HttpHost = httpHost
		}
		if cmd.PersistentFlags().Changed("http-port") {
			cfg.Server.HttpPort, _ = cmd.PersistentFlags().GetInt("http-port")
		}

		// load dataset
		db, err := data.LoadCSV(cfg.Data.ItemPath, cfg.Data.RatingPath, cfg.Data.SampleSize)
		if err != nil {
			log.Logger().Fatal("failed to load dataset", zap.Error(err))
		}

		// start server
		recommender := logics.NewRecommender(db, cfg.Recommend)
		restServer := server.NewRestServer(recommender, cfg)
		restServer.StartHttpServer()
	},
}

func init() {
	anirecCommand.PersistentFlags().StringP("config", "c", "", "path of configuration file")
	anirecCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	anirecCommand.PersistentFlags().String("http-host", "", "host of RESTful API")
	anirecCommand.PersistentFlags().Int("http-port", 8087, "port of RESTful API")
	log.AddFlags(anirecCommand.PersistentFlags())
}

func main() {
	if err := anirecCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
