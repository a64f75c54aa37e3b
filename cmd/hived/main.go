package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/daemon"
	"github.com/spf13/viper"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		configPath = flag.String("config", "", "config file (default: .hive-manager.yaml in the store root)")
		port       = flag.Int("port", 0, "HTTP listen port (overrides config/env)")
		storeRoot  = flag.String("store-root", ".", "project directory sessions are rooted under")
	)
	flag.Parse()

	viper.SetEnvPrefix("HIVE")
	viper.AutomaticEnv()
	if *configPath != "" {
		viper.SetConfigFile(*configPath)
	} else {
		viper.AddConfigPath(*storeRoot)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hive-manager")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("hived: reading config: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("hived: loading config: %v", err)
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}

	log.Println("hived starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("hived: received signal %v, shutting down", sig)
		cancel()
	}()

	if err := daemon.Run(ctx, cfg, *storeRoot, log.Default()); err != nil {
		log.Fatalf("hived: exited with error: %v", err)
	}

	log.Println("hived stopped")
}
