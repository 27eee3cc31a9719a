package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nebularoute/osc"
	"github.com/nebularoute/osc/server"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for OSC packets and log every message received",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := server.DefaultConfig()
		if serveConfigPath != "" {
			f, err := os.Open(serveConfigPath)
			if err != nil {
				return err
			}
			defer f.Close()
			cfg, err = server.LoadConfig(f)
			if err != nil {
				return err
			}
		}

		conn, err := net.ListenPacket(cfg.Protocol, cfg.ListenAddress)
		if err != nil {
			return err
		}
		defer conn.Close()

		d := server.NewDispatcher(cfg.Protocol, server.NewUDPSender(conn))
		d.Log = log
		d.AddMethod("", "", func(path, types string, msg *osc.Message, _ any) bool {
			log.WithFields(map[string]any{
				"path":  path,
				"types": types,
				"from":  msg.Source,
			}).Info("received message")
			return false
		}, nil)

		l := server.NewListener(conn, d, cfg.Workers)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log.WithField("addr", conn.LocalAddr()).Info("listening")
		if err := l.Serve(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a YAML server config file")
	rootCmd.AddCommand(serveCmd)
}
