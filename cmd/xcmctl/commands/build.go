package commands

import (
	"github.com/spf13/cobra"

	"xcmkit/internal/directive/handler"
)

func buildCmd(e *env) *cobra.Command {
	var (
		req     handler.BuildRequest
		refTime string
		proof   string
		encode  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a transfer directive",
		Example: `  xcmctl build --origin statemine --dest 2000 --recipient 5Grw... --asset 1984 --amount 1000000
  xcmctl build --origin kusama --dest 1000 --recipient 5Grw... --amount 1000000000000 --encode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refTime != "" || proof != "" {
				req.Options.WeightLimit = &handler.WeightLimitRequest{RefTime: refTime, ProofSize: proof}
			}
			if err := req.Validate(); err != nil {
				return err
			}
			domainReq := req.ToDomain()

			if !encode {
				d, err := e.service.BuildTransferDirective(cmd.Context(), domainReq)
				if err != nil {
					return err
				}
				rendered, err := d.Render()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rendered)
			}

			enc, err := e.service.Encode(cmd.Context(), domainReq)
			if err != nil {
				return err
			}
			rendered, err := enc.Directive.Render()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.FromEncoded(rendered, enc.CallArgs))
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Origin, "origin", "", "origin chain spec name")
	f.StringVar(&req.Destination, "dest", "", "destination chain id or location JSON")
	f.StringVar(&req.Recipient, "recipient", "", "SS58 or hex account on the destination")
	f.StringArrayVar(&req.Assets, "asset", nil, "asset symbol, id or location (repeatable)")
	f.StringArrayVar(&req.Amounts, "amount", nil, "amount per asset (repeatable)")
	f.IntVar(&req.Options.XcmVersion, "xcm-version", 0, "XCM version (2-5), default when zero")
	f.BoolVar(&req.Options.IsLimited, "limited", false, "use a limited weight")
	f.StringVar(&refTime, "ref-time", "", "weight limit ref_time")
	f.StringVar(&proof, "proof-size", "", "weight limit proof_size")
	f.StringVar(&req.Options.PayFeeWith, "pay-fee-with", "", "asset paying destination fees")
	f.BoolVar(&req.Options.KeepAlive, "keep-alive", false, "keep the sender account alive")
	f.BoolVar(&req.Options.TransferForeignAssets, "foreign", false, "resolve assets through the foreign assets pallet")
	f.StringVar(&req.Options.AmountKind, "amount-kind", "", "amount rendering: str or obj")
	f.BoolVar(&encode, "encode", false, "print SCALE call arguments")
	return cmd
}
