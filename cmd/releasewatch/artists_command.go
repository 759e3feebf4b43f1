package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"releasewatch/internal/config"
	"releasewatch/internal/model"
	"releasewatch/internal/storage"

	"github.com/spf13/cobra"
)

func newArtistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "artists",
		Short: "Показать отслеживаемых артистов и их последние известные релизы",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStorage()
			if err != nil {
				return err
			}

			log := newLogger(cfg, cmd)
			defer func() { _ = log.Sync() }()

			db, err := storage.Open(cfg.DatabaseURL, storage.Options{MaxRetries: 1}, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			records, err := db.GetArtistRepository().ScanAll(cmd.Context())
			if err != nil {
				return err
			}

			printArtists(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func printArtists(out io.Writer, records []model.ArtistRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No monitored artists")
		return
	}

	headers := []string{"#", "ID", "Artist", "Last album", "Last single", "Checked"}
	rows := make([][]string, 0, len(records))
	for i, record := range records {
		pair := record.Snapshots()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			record.ArtistID,
			record.ArtistName,
			formatSnapshot(pair.Album),
			formatSnapshot(pair.Single),
			formatChecked(record.CheckedAt),
		})
	}

	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight}))
}

func formatSnapshot(s model.ReleaseSnapshot) string {
	if s.IsEmpty() {
		return "-"
	}
	if s.ReleaseDate == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.ReleaseDate)
}

func formatChecked(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
