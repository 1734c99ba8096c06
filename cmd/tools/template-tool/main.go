// cmd/tools/template-tool/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"slide-composer/internal/common/logger"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/composer/prompt"
	"slide-composer/internal/composer/registry"
	"slide-composer/internal/composer/template"
	"slide-composer/internal/deck"
	"slide-composer/internal/models"
	"slide-composer/pkg/templatedoc"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	promptCmd := flag.NewFlagSet("prompt", flag.ExitOnError)

	// Validate command flags
	validatePath := validateCmd.String("path", "", "Path to template definition JSON (required)")
	validateSkeleton := validateCmd.String("skeleton", "", "Optional deck skeleton to check layout indexes against")

	// List command flags
	listPath := listCmd.String("path", "", "Path to template definition JSON (default: built-in)")
	listJSON := listCmd.Bool("json", false, "Print entries as JSON")

	// Prompt command flags
	promptPath := promptCmd.String("path", "", "Path to template definition JSON (default: built-in)")
	promptText := promptCmd.String("prompt", "", "User request to embed in the prompt")
	promptImages := promptCmd.String("images", "", "Directory of images to list in the prompt")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *validatePath == "" {
			fmt.Println("Error: path is required for validate.")
			validateCmd.Usage()
			os.Exit(1)
		}
		if err := validateTemplate(*validatePath, *validateSkeleton); err != nil {
			fmt.Printf("Template validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Template validation passed.")

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listTypes(*listPath, *listJSON); err != nil {
			fmt.Printf("Error listing slide types: %v\n", err)
			os.Exit(1)
		}

	case "prompt":
		promptCmd.Parse(os.Args[2:])
		if err := printPrompt(*promptPath, *promptText, *promptImages); err != nil {
			fmt.Printf("Error building prompt: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func loadRegistry(path string) (*registry.Registry, *template.TemplateDefinition, error) {
	t := template.Builtin()
	if path != "" {
		var err error
		if t, err = template.Load(path); err != nil {
			return nil, nil, err
		}
	}
	reg, err := registry.FromTemplate(t, logger.NewNoOpLogger())
	if err != nil {
		return nil, nil, err
	}
	return reg, t, nil
}

func validateTemplate(path, skeletonPath string) error {
	if _, err := templatedoc.LoadDocument(path); err != nil {
		var verr *templatedoc.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Printf("  - %s\n", p)
			}
			return fmt.Errorf("%d schema problems", len(verr.Problems))
		}
		return err
	}

	_, t, err := loadRegistry(path)
	if err != nil {
		return err
	}

	if len(t.Types()) == 0 {
		return fmt.Errorf("template defines no slide types")
	}

	if skeletonPath != "" {
		sk, err := deck.LoadSkeleton(skeletonPath)
		if err != nil {
			return fmt.Errorf("failed to load skeleton: %w", err)
		}
		for _, def := range t.Types() {
			idx, ok := sk.LayoutFor(def.TypeID)
			if !ok {
				idx = def.LayoutIndex
			}
			if idx == deck.BlankLayout || idx >= len(sk.Layouts) {
				fmt.Printf("  warning: %s has no usable skeleton layout, layout 0 will be used\n", def.TypeID)
			}
		}
	}

	fmt.Printf("Template %q %s: %d slide types, canvas %.2f x %.2f in.\n",
		t.Name, t.Version, len(t.Types()), t.Width, t.Height)
	return nil
}

func listTypes(path string, asJSON bool) error {
	reg, _, err := loadRegistry(path)
	if err != nil {
		return err
	}
	entries := reg.Entries()

	if asJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, e := range entries {
		marker := " "
		if e.Tag == reg.DefaultTag() {
			marker = "*"
		}
		fields := make([]string, 0, len(e.Example))
		for k := range e.Example {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		fmt.Printf("%s %-18s %s\n", marker, e.Tag, e.Description)
		if len(fields) > 0 {
			fmt.Printf("    fields: %s\n", strings.Join(fields, ", "))
		}
	}
	return nil
}

func printPrompt(path, userPrompt, imagesDir string) error {
	reg, _, err := loadRegistry(path)
	if err != nil {
		return err
	}
	var images models.ImageMetadata
	if imagesDir != "" {
		if images, err = imageres.ScanDirectory(imagesDir); err != nil {
			return err
		}
	}
	text, err := prompt.Build(reg.Entries(), images, userPrompt)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func help() {
	fmt.Print(`
Usage: template-tool <command> [flags]

Commands:
  validate Validate a template definition (and optionally a skeleton)
  list     List the slide types a template registers
  prompt   Print the generation prompt for a template
  help     Show this help message

Examples:
  template-tool validate -path templates/corporate.json -skeleton templates/corporate-skeleton.json
  template-tool list -json
  template-tool prompt -prompt "Quarterly results for the board" -images ./images

Use 'template-tool <command> -h' for more information about a command.
` + "\n")
}
