package main

import (
	"context"
	"go/format"
	"log"
	"os"
	"time"

	"github.com/delaneyj/watchparty/cmd/codegen/templates"
	"github.com/urfave/cli/v3"
)

const (
	outKey     = "out"
	packageKey = "package"
)

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate the exit kind table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  outKey,
				Usage: "File to write",
				Value: "exitkind/kinds_gen.go",
			},
			&cli.StringFlag{
				Name:  packageKey,
				Usage: "Package clause of the generated file",
				Value: "exitkind",
			},
		},
		Action: generate,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("Codegen for exit kinds started !")
	defer func() {
		log.Printf("Codegen for exit kinds finished in %v", time.Since(start))
	}()

	out := cmd.String(outKey)
	log.Printf("Writing %d kinds to %s", len(templates.ExitKinds), out)

	contents, err := format.Source([]byte(templates.ExitKindsGen(cmd.String(packageKey), templates.ExitKinds)))
	if err != nil {
		return err
	}
	return os.WriteFile(out, contents, 0644)
}
