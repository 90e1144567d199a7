// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forensicanalysis/searchindex/evidencestore"
)

// Records is the searchindex records commandline subcommand. It prints
// stored records as JSON lines.
func Records() *cobra.Command {
	var recordType string
	recordsCommand := &cobra.Command{
		Use:   "records <store>",
		Short: "Print extracted records from an evidence store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := evidencestore.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			var elements []evidencestore.JSONElement
			if recordType == "" {
				elements, err = store.All()
			} else {
				elements, err = store.Select([]map[string]string{{"type": recordType}})
			}
			if err != nil {
				return err
			}

			for _, element := range elements {
				fmt.Fprintln(cmd.OutOrStdout(), string(element))
			}
			return nil
		},
	}
	recordsCommand.Flags().StringVar(&recordType, "type", "", "only print records of this type")
	return recordsCommand
}
