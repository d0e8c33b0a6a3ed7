package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "l2serv",
	Short: "Serve decoded Level II archives from the public NEXRAD buckets",
	Long: `l2serv lists and decodes Level II archives on request and returns their metadata and moment data as JSON.

Every flag can also be set from the environment with an L2SERV_ prefix, eg L2SERV_ADDR=:9000.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("addr", "0.0.0.0:8081", "address to listen on")
	flags.String("region", "us-east-1", "AWS region of the buckets")
	flags.String("bucket", "noaa-nexrad-level2", "bucket holding complete archives")
	flags.String("chunk-bucket", "unidata-nexrad-level2-chunks", "bucket holding volumes as chunks")
	flags.String("log-level", "debug", "logging level (error, info, debug, trace)")

	viper.SetEnvPrefix("l2serv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlags(flags)
}

func serve() error {
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	store, err := newS3Store(viper.GetString("region"), viper.GetString("bucket"), viper.GetString("chunk-bucket"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	s := newServer(store, NewMetrics(reg), logrus.StandardLogger())

	srv := &http.Server{
		Addr: viper.GetString("addr"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.routes(reg), // Pass our instance of gorilla/mux in.
	}

	logrus.Infof("listening on %s", srv.Addr)
	return srv.ListenAndServe()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
