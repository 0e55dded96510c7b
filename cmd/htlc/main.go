package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ark-network/htlc/internal/core/domain"
	grpcclient "github.com/ark-network/htlc/internal/interface/grpc/client"
	"github.com/urfave/cli/v2"
)

var version = "dev"

var (
	rpcServerFlag = &cli.StringFlag{
		Name:    "rpc-server",
		Usage:   "address of the htlcd gRPC server",
		Value:   "localhost:7171",
		EnvVars: []string{"HTLC_RPC_SERVER"},
	}
	tlsCertFlag = &cli.StringFlag{
		Name:    "tls-cert-path",
		Usage:   "path of the daemon TLS certificate, plaintext if not set",
		EnvVars: []string{"HTLC_TLS_CERT_PATH"},
	}
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "htlc"
	app.Usage = "command line interface of the htlcd daemon"
	app.Commands = append(
		app.Commands,
		lockAssetCommand,
		claimAssetCommand,
		unlockAssetCommand,
		isAssetLockedCommand,
		getHTLCCommand,
		getHTLCHashCommand,
		getHTLCPreimageCommand,
		getClaimReceiptsCommand,
		assetCommand,
		hashCommand,
		keysCommand,
		infoCommand,
	)
	app.Flags = []cli.Flag{rpcServerFlag, tlsCertFlag}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders err as <kind>: <reason>.
func formatError(err error) string {
	if kind := domain.KindOf(err); kind != domain.ErrorKindUndefined {
		return fmt.Sprintf("%s: %s", kind, domain.ReasonOf(err))
	}
	return fmt.Sprintf("error: %s", err)
}

func getClient(ctx *cli.Context) (*grpcclient.Client, error) {
	return grpcclient.NewClient(ctx.String(rpcServerFlag.Name), ctx.String(tlsCertFlag.Name))
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}
