package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResourceCmd(current *app, name string) *cobra.Command {
	resourceCmd := &cobra.Command{Use: name, Short: fmt.Sprintf("Manage %s", name)}

	resourceCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := current.registry.Lookup(name)
			if err != nil {
				return err
			}
			output, err := collection.ListAny(cmd.Context(), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	})

	resourceCmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := current.registry.Lookup(name)
			if err != nil {
				return err
			}
			output, err := collection.GetAny(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	})

	var createData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an entity from a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := current.registry.Lookup(name)
			if err != nil {
				return err
			}
			output, err := collection.CreateJSON(cmd.Context(), []byte(createData))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "JSON document (required)")
	_ = createCmd.MarkFlagRequired("data")
	resourceCmd.AddCommand(createCmd)

	var updateData string
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace an entity with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := current.registry.Lookup(name)
			if err != nil {
				return err
			}
			output, err := collection.UpdateJSON(cmd.Context(), args[0], []byte(updateData))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "JSON document (required)")
	_ = updateCmd.MarkFlagRequired("data")
	resourceCmd.AddCommand(updateCmd)

	resourceCmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := current.registry.Lookup(name)
			if err != nil {
				return err
			}
			err = collection.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", name, args[0])
			return nil
		},
	})
	return resourceCmd
}
