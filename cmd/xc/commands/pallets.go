package commands

import (
	"context"
	"fmt"

	"github.com/cordialsys/xcall/chain/substrate/client"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/cmd/xc/setup"
	"github.com/spf13/cobra"
)

type palletSummary struct {
	Name       string `json:"name"`
	Index      uint8  `json:"index"`
	Extrinsics int    `json:"extrinsics"`
	Storage    int    `json:"storage"`
}

type operationListing struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
	// type of the stored value, storage entries only
	Value string `json:"value,omitempty"`
	Docs  string `json:"docs,omitempty"`
}

type palletListing struct {
	Name       string              `json:"name"`
	Index      uint8               `json:"index"`
	Extrinsics []*operationListing `json:"extrinsics,omitempty"`
	Storage    []*operationListing `json:"storage,omitempty"`
}

func labels(args []*registry.Arg) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg.Label()
	}
	return out
}

func listPallets(reg *registry.Registry) []*palletSummary {
	summaries := []*palletSummary{}
	for _, p := range reg.SortedPallets() {
		summaries = append(summaries, &palletSummary{
			Name:       p.Name,
			Index:      p.Index,
			Extrinsics: len(p.Extrinsics),
			Storage:    len(p.Storage),
		})
	}
	return summaries
}

func listPallet(reg *registry.Registry, pallet *registry.Pallet) *palletListing {
	listing := &palletListing{Name: pallet.Name, Index: pallet.Index}
	for _, extrinsic := range pallet.Extrinsics {
		listing.Extrinsics = append(listing.Extrinsics, &operationListing{
			Name: extrinsic.Name,
			Args: labels(extrinsic.Args),
			Docs: extrinsic.Docs,
		})
	}
	for _, entry := range pallet.Storage {
		listing.Storage = append(listing.Storage, &operationListing{
			Name:  entry.Name,
			Args:  labels(entry.Keys),
			Value: reg.Lookup().TypeName(entry.ValueType),
			Docs:  entry.Docs,
		})
	}
	return listing
}

func CmdPallets() *cobra.Command {
	var pallet, format string
	cmd := &cobra.Command{
		Use:   "pallets",
		Short: "List the pallets of a chain, or the extrinsics and storage of one pallet.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapCallConfig(cmd.Context())
			override, err := setup.CallOverrideFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.OverrideCallSettings(cfg, override)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			cli, err := client.NewClient(ctx, cfg.URL)
			if err != nil {
				return err
			}
			defer cli.Close()
			reg, err := cli.FetchMetadata(ctx)
			if err != nil {
				return err
			}

			var data any = listPallets(reg)
			if pallet != "" {
				found, err := reg.FindPallet(pallet)
				if err != nil {
					return err
				}
				data = listPallet(reg, found)
			}
			out, err := printer(format, data)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&pallet, "pallet", "", "Show the extrinsics and storage of this pallet.")
	cmd.Flags().StringVar(&format, "format", "yaml", "Format may be json or yaml.")
	setup.AddCallOverrideArgs(cmd)
	return cmd
}
