package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/docs/internal/admin"
	"github.com/MrSnakeDoc/docs/internal/app"
	"github.com/MrSnakeDoc/docs/internal/domain"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/utils"
)

func newExportCommand(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored document as JSON",
		Long: `Write the stored pages and categories as one JSON document, to stdout
or to the file given with --output. The result can be fed back with
"docs import".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := e.setup()
			st, err := app.OpenStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(st, "store", log)

			state, err := st.Load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode state: %w", err)
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Info("state exported",
				logger.String("file", output),
				logger.Int("pages", len(state.Pages)),
				logger.Int("categories", len(state.Categories)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored document with a JSON export",
		Long: `Replace every stored page and category with the content of a JSON
document produced by "docs export". Use "-" to read from stdin. The document
is validated first; nothing is written when it is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			state, err := domain.DecodeState(data)
			if err != nil {
				return err
			}

			cfg, log := e.setup()
			st, err := app.OpenStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(st, "store", log)

			if err := admin.NewService(st, log).ImportState(cmd.Context(), state); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d pages and %d categories\n",
				len(state.Pages), len(state.Categories))
			return err
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func newResetCommand(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite the stored document with the seed document",
		Long: `Overwrite the stored document with the seed document (DOCS_SEED_FILE,
or the built-in one). This also recovers from a corrupt document. Every
existing page and category is lost, so --yes is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}

			cfg, log := e.setup()
			st, err := app.OpenStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(st, "store", log)

			state, err := st.Reset(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reset %s store to %d pages and %d categories\n",
				st.BackendName(), len(state.Pages), len(state.Categories))
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm that existing content is discarded")
	return cmd
}
