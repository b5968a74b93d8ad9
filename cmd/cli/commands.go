package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"go.uber.org/zap"
)

func newExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every link as JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			links, err := repo.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(links); err != nil {
				return fmt.Errorf("encode failed: %w", err)
			}
			e.logger.Info("exported links", zap.Int("count", len(links)))
			return nil
		},
	}
}

func newImportCmd(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load links from a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			var links []domain.Link
			if err := json.NewDecoder(f).Decode(&links); err != nil {
				return fmt.Errorf("decode failed: %w", err)
			}

			repo, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			imported, skipped := importLinks(cmd, repo, links, e.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d links, skipped %d\n", imported, skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// importLinks inserts links whose short code is not taken yet. Row ids are
// reassigned by the database.
func importLinks(cmd *cobra.Command, repo *sqlite.SQLiteRepository, links []domain.Link, logger *zap.Logger) (imported, skipped int) {
	ctx := cmd.Context()
	for _, l := range links {
		existing, err := repo.FindLinksByCode(ctx, l.ShortURL, 1)
		if err != nil {
			logger.Warn("lookup failed", zap.String("code", l.ShortURL), zap.Error(err))
			skipped++
			continue
		}
		if len(existing) > 0 {
			logger.Info("skipping existing code", zap.String("code", l.ShortURL))
			skipped++
			continue
		}

		l.ID = 0
		if err := repo.CreateLink(ctx, &l); err != nil {
			logger.Warn("failed to import", zap.String("code", l.ShortURL), zap.Error(err))
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the repository migrates.
			repo, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			version, err := sqlite.MigrationVersion(cmd.Context(), repo.DB().DB)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
