package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/specimen-cli/internal/server"
)

var (
	srvAddr    string
	srvData    string
	srvNoCache bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		popt, err := parserOptions("", "")
		if err != nil {
			return err
		}
		opt := server.Options{
			Processor:      newProcessor(0),
			Parser:         popt,
			CacheTTL:       c.CacheTTL(),
			UploadDir:      c.UploadDir,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			Logger:         logger,
		}
		if !srvNoCache {
			store, err := openCache()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: cache disabled: %v\n", err)
			} else {
				opt.Cache = store
			}
		}
		s := server.New(opt)

		data := c.DataPath
		if srvData != "" {
			data = srvData
		}
		out := cmd.OutOrStdout()
		if data != "" {
			snap, err := s.LoadFile(data)
			if err != nil {
				return fmt.Errorf("load %s: %w", data, err)
			}
			fmt.Fprintf(out, "✓ Loaded %s (%d specimens)\n", snap.Name, snap.Data.Len())
		} else if ok, err := s.Restore(); err != nil {
			logger.Warn("restore cached dataset", zap.Error(err))
		} else if ok {
			snap := s.Current()
			fmt.Fprintf(out, "✓ Restored %s from cache (%d specimens)\n", snap.Name, snap.Data.Len())
		}

		addr := c.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(out, "Dashboard at http://%s/ (Ctrl+C to stop)\n", addr)
		return s.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&srvData, "data", "", "catalog file to load at startup")
	serveCmd.Flags().BoolVar(&srvNoCache, "no-cache", false, "do not read or write the dataset cache")
}
