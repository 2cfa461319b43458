package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ledgerline/erp-client/internal/apiclient"
	"github.com/spf13/cobra"
)

func newRequestCmd(current *app) *cobra.Command {
	var data string
	var query []string
	requestCmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send an authenticated request to a path relative to the API base URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &apiclient.Request{Method: strings.ToUpper(args[0]), Path: args[1], Header: http.Header{}}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				req.Body = []byte(data)
				req.Header.Set("Content-Type", "application/json")
			}
			if len(query) > 0 {
				req.Query = url.Values{}
				for _, pair := range query {
					key, value, found := strings.Cut(pair, "=")
					if !found {
						return fmt.Errorf("query parameter %q is not in the key=value form", pair)
					}
					req.Query.Add(key, value)
				}
			}
			resp, err := current.client.Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(resp.Body) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", resp.StatusCode)
				return nil
			}
			var body any
			if err := json.Unmarshal(resp.Body, &body); err != nil {
				_, _ = cmd.OutOrStdout().Write(resp.Body)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	requestCmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	requestCmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value, can be repeated")
	return requestCmd
}
