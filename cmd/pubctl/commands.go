package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pubhub/models"
	"pubhub/services"
)

const (
	exitError      = 1
	exitValidation = 2
	exitConflict   = 3
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return exitValidation
	case errors.Is(err, services.ErrConflict):
		return exitConflict
	default:
		return exitError
	}
}

func newIngestCmd() *cobra.Command {
	var (
		title   string
		year    int
		authors []string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Record a publication with its author ids",
		Example: `  pubctl ingest --title "Lorem ipsum" --year 1999 --author 5 --author 9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := newIngestService().CreatePublication(cmd.Context(), services.CreatePublicationRequest{
				Title:       title,
				PublishYear: year,
				AuthorIDs:   authors,
			})
			if err != nil {
				return err
			}
			return printPublications(cmd.OutOrStdout(), []models.PublicationView{view})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Publication title")
	cmd.Flags().IntVar(&year, "year", 0, "Publish year")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "Author id (repeatable or comma separated)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newListCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List publications with their authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *int
			if cmd.Flags().Changed("year") {
				filter = &year
			}
			views, err := services.NewAggregationReader(db).ListPublications(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printPublications(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Only publications of this publish year")
	return cmd
}

func printPublications(w io.Writer, views []models.PublicationView) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	for _, v := range views {
		if _, err := fmt.Fprintln(w, services.FormatPublication(v)); err != nil {
			return err
		}
	}
	return nil
}
