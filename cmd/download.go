package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	downloadForm    string
	downloadDir     string
	downloadWorkers int
)

var downloadCmd = &cobra.Command{
	Use:   "download <bank>...",
	Short: "Download SEC filing documents for one or more banks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.close()

		if err := os.MkdirAll(downloadDir, 0o755); err != nil {
			return eris.Wrapf(err, "create %s", downloadDir)
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(downloadWorkers)

		hc := &http.Client{Timeout: 60 * time.Second}
		var saved atomic.Int64
		for _, bank := range args {
			filings, err := env.edgar.Filings(ctx, bank, downloadForm)
			if err != nil {
				zap.L().Warn("skipping bank, filings lookup failed",
					zap.String("bank", bank), zap.Error(err))
				continue
			}
			for _, filing := range filings {
				if filing.DocumentURL == "" {
					continue
				}
				g.Go(func() error {
					path := filepath.Join(downloadDir, documentFileName(bank, filing.AccessionNumber, filing.PrimaryDocument))
					if err := downloadDocument(ctx, hc, filing.DocumentURL, path); err != nil {
						zap.L().Warn("download failed",
							zap.String("url", filing.DocumentURL), zap.Error(err))
						return nil
					}
					saved.Add(1)
					zap.L().Info("saved filing",
						zap.String("bank", bank),
						zap.String("form", filing.Form),
						zap.String("path", path))
					return nil
				})
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "saved %d documents to %s\n", saved.Load(), downloadDir)
		return nil
	},
}

func documentFileName(bank, accession, primary string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(bank), " ", "-"))
	if primary == "" {
		primary = accession + ".htm"
	}
	return slug + "-" + primary
}

func downloadDocument(ctx context.Context, hc *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", cfg.EDGAR.UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetch document")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetch document: status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadForm, "form", "10-K", "form type to download")
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "filings", "directory to save documents into")
	downloadCmd.Flags().IntVar(&downloadWorkers, "workers", 4, "concurrent downloads")
}
