package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/storage"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add and delete the categories the language model may choose from.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				_, _ = fmt.Fprintln(a.out, cli.FormatInfo("No categories found. Use 'spendmatch categories add' to create one."))
				return nil
			}

			rows := make([][]string, 0, len(categories))
			for _, cat := range categories {
				rows = append(rows, []string{strconv.Itoa(cat.ID), cat.Name, cat.Description})
			}

			_, err = fmt.Fprintln(a.out, cli.RenderTable([]string{"ID", "Name", "Description"}, rows))
			return err
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a new category. The description is shown to the language model,
so a few words about what belongs there improve its choices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0], description)
			if errors.Is(err, storage.ErrCategoryExists) {
				return common.NewUserError(fmt.Sprintf("Category %q already exists", args[0]), err)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf("Created category %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what belongs in this category")

	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long:  `Delete a category. Expenses already filed under it keep the name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			err = store.DeleteCategory(ctx, name)
			switch {
			case errors.Is(err, storage.ErrCategoryNotFound):
				return common.NewUserError(fmt.Sprintf("Category %q does not exist", name), err)
			case errors.Is(err, storage.ErrFallbackCategory):
				return common.NewUserError(fmt.Sprintf("%q is the fallback category and cannot be deleted", name), err)
			case err != nil:
				return err
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", name)))
			return nil
		},
	}
}
