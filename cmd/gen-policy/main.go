package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"

	loamadapter "github.com/aretw0/usher/pkg/adapters/loam"
)

func main() {
	targetDir := "examples/policy-handlers/policies"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating starter policies in: %s\n", targetDir)

	// Init Loam (No Versioning = pure file generation)
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		panic(err)
	}

	typedRepo := loam.NewTypedRepository[loamadapter.HandlerMetadata](repo)
	ctx := context.TODO()

	// 1. Web pages via the default browser
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.HandlerMetadata]{
		ID:      "https",
		Content: "Web pages open in the default browser.\nEdit `command` to pin one.",
		Data: loamadapter.HandlerMetadata{
			Scheme:  "https",
			Command: "xdg-open",
			Args:    []string{"{url}"},
		},
	})
	check(err)

	// 2. Mail links, with a denied host to demonstrate filters
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.HandlerMetadata]{
		ID:      "mailto",
		Content: "Mail links compose in Thunderbird.\nMessages to spam.example.com are refused.",
		Data: loamadapter.HandlerMetadata{
			Scheme:  "mailto",
			Command: "thunderbird",
			Args:    []string{"-compose", "{url}"},
			Deny:    []string{"spam.example.com"},
		},
	})
	check(err)

	// 3. A parked handler, disabled until the tool is installed
	err = typedRepo.Save(ctx, &loam.DocumentModel[loamadapter.HandlerMetadata]{
		ID:      "gopher",
		Content: "Gopher burrows render in lynx.\nEnable once lynx is installed.",
		Data: loamadapter.HandlerMetadata{
			Scheme:   "gopher",
			Command:  "lynx",
			Args:     []string{"{url}"},
			Disabled: true,
		},
	})
	check(err)

	fmt.Println("Done. Verify contents in", targetDir)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
